package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LastColumn bounds the "full row" spans used for whole-sheet reads and row clears.
const LastColumn = "ZZ"

// Range is an A1-notation rectangle on one sheet.
// Columns are letters; an empty column means "unbounded", a zero row means "unbounded".
type Range struct {
	Sheet    string
	StartCol string
	StartRow int
	EndCol   string
	EndRow   int
}

// FullRowSpan is the range covering columns A through LastColumn on every row.
func FullRowSpan(sheet string) Range {
	return Range{Sheet: sheet, StartCol: "A", EndCol: LastColumn}
}

// RowSpan is the range covering columns A through LastColumn on a single row.
func RowSpan(sheet string, row int) Range {
	return Range{Sheet: sheet, StartCol: "A", StartRow: row, EndCol: LastColumn, EndRow: row}
}

// Cell is the single-cell range at col (0-based) and row (1-based).
func Cell(sheet string, col, row int) Range {
	letter := ColumnLetter(col)
	return Range{Sheet: sheet, StartCol: letter, StartRow: row, EndCol: letter, EndRow: row}
}

// Column is the whole-column range of col (0-based).
func Column(sheet string, col int) Range {
	letter := ColumnLetter(col)
	return Range{Sheet: sheet, StartCol: letter, EndCol: letter}
}

// Rows is the range covering whole rows from..to (1-based, inclusive).
func Rows(sheet string, from, to int) Range {
	return Range{Sheet: sheet, StartRow: from, EndRow: to}
}

// QuoteSheet renders a sheet title the way A1 notation requires.
func QuoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func (r Range) String() string {
	start := r.StartCol + rowPart(r.StartRow)
	end := r.EndCol + rowPart(r.EndRow)
	if start == "" && end == "" {
		return QuoteSheet(r.Sheet)
	}
	if start == end && r.StartCol != "" && r.StartRow > 0 {
		return fmt.Sprintf("%s!%s", QuoteSheet(r.Sheet), start)
	}
	return fmt.Sprintf("%s!%s:%s", QuoteSheet(r.Sheet), start, end)
}

// IsCell reports whether the range addresses exactly one cell.
func (r Range) IsCell() bool {
	return r.StartCol != "" && r.StartCol == r.EndCol && r.StartRow > 0 && r.StartRow == r.EndRow
}

func rowPart(row int) string {
	if row <= 0 {
		return ""
	}
	return strconv.Itoa(row)
}

var (
	a1Pattern  = regexp.MustCompile(`^(?:'((?:[^']|'')*)'|([^'!]+))(?:!(.+))?$`)
	refPattern = regexp.MustCompile(`^([A-Za-z]*)(\d*)$`)
)

// ParseRange parses A1 notation such as 'Sheet 1'!B2:D, Sheet1!A:ZZ or 'S'!C3.
func ParseRange(a1 string) (Range, error) {
	m := a1Pattern.FindStringSubmatch(strings.TrimSpace(a1))
	if m == nil {
		return Range{}, errors.Errorf("invalid range %q", a1)
	}
	r := Range{Sheet: m[2]}
	if m[1] != "" || m[2] == "" {
		r.Sheet = strings.ReplaceAll(m[1], "''", "'")
	}
	if m[3] == "" {
		return r, nil
	}
	parts := strings.SplitN(m[3], ":", 2)
	var err error
	if r.StartCol, r.StartRow, err = parseRef(parts[0]); err != nil {
		return Range{}, errors.Wrapf(err, "parsing %q", a1)
	}
	if len(parts) == 1 {
		r.EndCol, r.EndRow = r.StartCol, r.StartRow
		return r, nil
	}
	if r.EndCol, r.EndRow, err = parseRef(parts[1]); err != nil {
		return Range{}, errors.Wrapf(err, "parsing %q", a1)
	}
	return r, nil
}

func parseRef(ref string) (string, int, error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil || (m[1] == "" && m[2] == "") {
		return "", 0, errors.Errorf("invalid cell reference %q", ref)
	}
	var row int
	if m[2] != "" {
		row, _ = strconv.Atoi(m[2])
	}
	return strings.ToUpper(m[1]), row, nil
}

// Bounds returns the 0-based column span and 1-based row span of the range.
// Unbounded ends are reported as -1 (columns) and 0 (rows).
func (r Range) Bounds() (startCol, endCol, startRow, endRow int) {
	startCol, endCol = 0, -1
	if r.StartCol != "" {
		startCol = ColumnIndex(r.StartCol)
	}
	if r.EndCol != "" {
		endCol = ColumnIndex(r.EndCol)
	}
	startRow = r.StartRow
	if startRow <= 0 {
		startRow = 1
	}
	return startCol, endCol, startRow, r.EndRow
}

// Extract cuts the range out of a full sheet grid, trimmed the way Backend.Values reports it.
func (r Range) Extract(grid [][]string) [][]string {
	startCol, endCol, startRow, endRow := r.Bounds()
	if endRow <= 0 || endRow > len(grid) {
		endRow = len(grid)
	}
	out := make([][]string, 0)
	for ri := startRow - 1; ri < endRow; ri++ {
		row := grid[ri]
		last := len(row) - 1
		if endCol >= 0 && endCol < last {
			last = endCol
		}
		var vals []string
		if startCol <= last {
			vals = append(vals, row[startCol:last+1]...)
		}
		out = append(out, trimRow(vals))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return append([]string{}, row[:end]...)
}
