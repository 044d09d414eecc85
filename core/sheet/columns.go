// Package sheet treats a loosely structured spreadsheet as a record store: one tab per exam,
// a header row that defines column semantics by label, data rows keyed by student name,
// and a small reference-label block living next to the data.
//
// Column positions are always resolved through the header row (see Header) and never hard-coded,
// so staff may reorder, rename (within the known synonyms) or insert columns freely.
// Row identity is positional: a record's ID is its current 1-based sheet row.
package sheet

import (
	"strings"

	"github.com/impact7/scoredesk/core"
)

// NotFound is returned by the Header lookups when no column matches.
const NotFound = -1

// Field is a logical column that may have had several historical header spellings.
type Field string

const (
	FieldName   Field = "name"
	FieldSchool Field = "school"
	FieldGrade  Field = "grade"
	FieldDate   Field = "date"
	FieldDept   Field = "dept"
	FieldType   Field = "type"   // exam type; also the sentinel before the score columns
	FieldRef    Field = "ref"    // per-record linked label
	FieldLabels Field = "labels" // column holding the reference-label block
	FieldSum    Field = "sum"
)

// Synonyms lists the accepted header spellings of each logical field, in priority order.
var Synonyms = map[Field][]string{
	FieldName:   {"이름"},
	FieldSchool: {"학교"},
	FieldGrade:  {"학년"},
	FieldDate:   {"응시일"},
	FieldDept:   {"소속"},
	FieldType:   {"시험종류", "시험 종류"},
	FieldRef:    {"지난 시험지", "지난시험지", "참조", "LastMark"},
	FieldLabels: {"lastmark", "지난 시험지", "지난시험지"},
	FieldSum:    {"SUM"},
}

// Normalize returns the canonical form of a header label used for matching.
func Normalize(label string) string {
	return core.NormalizeLabel(label)
}

// Header is the ordered label row of a sheet (row 1).
type Header []string

// Index returns the 0-based position of the first column whose normalized label equals the
// normalized target, or NotFound.
func (h Header) Index(label string) int {
	target := Normalize(label)
	for i, l := range h {
		if Normalize(l) == target {
			return i
		}
	}
	return NotFound
}

// IndexAny probes labels in order and returns the first position found.
func (h Header) IndexAny(labels ...string) int {
	for _, l := range labels {
		if i := h.Index(l); i != NotFound {
			return i
		}
	}
	return NotFound
}

// Field resolves a logical field through its synonyms.
func (h Header) Field(f Field) int {
	return h.IndexAny(Synonyms[f]...)
}

// ScoreHeaders returns the non-empty labels strictly after the exam-type sentinel column.
// Without a sentinel there are no score headers.
func (h Header) ScoreHeaders() []string {
	sentinel := h.Field(FieldType)
	headers := make([]string, 0)
	if sentinel == NotFound {
		return headers
	}
	for _, l := range h[sentinel+1:] {
		if strings.TrimSpace(l) != "" {
			headers = append(headers, l)
		}
	}
	return headers
}

// IsLabelColumn reports whether label is one of the reference-label spellings.
func IsLabelColumn(label string) bool {
	norm := Normalize(label)
	for _, f := range []Field{FieldRef, FieldLabels} {
		for _, s := range Synonyms[f] {
			if Normalize(s) == norm {
				return true
			}
		}
	}
	return false
}

// ColumnLetter converts a 0-based column position to its spreadsheet letter (0 → A, 26 → AA).
func ColumnLetter(idx int) string {
	if idx < 0 {
		return ""
	}
	var code []byte
	for idx >= 0 {
		code = append([]byte{byte('A' + idx%26)}, code...)
		idx = idx/26 - 1
	}
	return string(code)
}

// ColumnIndex converts a spreadsheet column letter to its 0-based position, or NotFound if invalid.
func ColumnIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return NotFound
	}
	n := 0
	for _, c := range letter {
		if c < 'A' || c > 'Z' {
			return NotFound
		}
		n = n*26 + int(c-'A') + 1
	}
	return n - 1
}
