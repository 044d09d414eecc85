package score

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
)

// IsAdjustment reports whether a header names an individual adjustment/curve field.
func IsAdjustment(header string) bool {
	return strings.Contains(header, AdjustmentTag)
}

// IsRaw reports whether a header names a raw input column.
func IsRaw(header string) bool {
	return strings.Contains(strings.ToLower(header), RawTag)
}

// Lookup finds the value of field in scores, trying the exact key first and then a normalized match.
func Lookup(scores map[string]string, field string) (string, bool) {
	if v, ok := scores[field]; ok {
		return v, true
	}
	if k, ok := matchKey(scores, field); ok {
		return scores[k], true
	}
	return "", false
}

// matchKey returns the key of scores whose normalized form equals field's.
func matchKey(scores map[string]string, field string) (string, bool) {
	norm := core.NormalizeLabel(field)
	for _, k := range sortedKeys(scores) {
		if core.NormalizeLabel(k) == norm {
			return k, true
		}
	}
	return "", false
}

// IsComplete reports whether every required raw field has a value.
// With a known department the required fields are the department's fields minus adjustments;
// otherwise every raw column present in scores is required, adjustments excepted.
func IsComplete(dept Department, scores map[string]string) bool {
	if spec, ok := specs[dept]; ok && len(spec.Fields) > 0 {
		for _, f := range spec.Fields {
			if f.IsAdjustment() {
				continue
			}
			if v, _ := Lookup(scores, f.Name); strings.TrimSpace(v) == "" {
				return false
			}
		}
		return true
	}
	for k, v := range scores {
		if !IsRaw(k) || IsAdjustment(k) {
			continue
		}
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// AggregateSum returns the spreadsheet-computed total verbatim, 0 if missing or unparseable.
// This is the only authoritative total.
func AggregateSum(scores map[string]string) float64 {
	v, _ := Lookup(scores, SumHeader)
	return ParseNumber(v)
}

// Preview is a client-side estimate of a total for an unsaved form. It is never stored.
type Preview float64

// PreviewSum adds up the raw and adjustment fields of an edited form.
// Without a department every raw or adjustment column in scores is summed.
func PreviewSum(dept Department, scores map[string]string) Preview {
	fields := FieldsFor(dept)
	if len(fields) == 0 {
		fields = sortedKeys(scores)
	}
	var total float64
	for _, f := range fields {
		if !IsRaw(f) && !IsAdjustment(f) {
			continue
		}
		v, _ := Lookup(scores, f)
		total += ParseNumber(v)
	}
	return Preview(total)
}

// InferDept maps a grade label to a department, checking departments in precedence order
// (so "초6" resolves to Elementary and "중3" to Middle), then forces High when any score key
// names a high-school-only subject.
func InferDept(grade string, scoreKeys []string) Department {
	var dept Department
	grade = core.CleanString(grade)
	if grade != "" {
	loop:
		for _, d := range Departments {
			for _, g := range specs[d].Grades {
				if g == grade {
					dept = d
					break loop
				}
			}
		}
	}
	for _, k := range scoreKeys {
		for _, marker := range highSubjectMarkers {
			if strings.Contains(k, marker) {
				return High
			}
		}
	}
	return dept
}

// CheckLimit validates a single input value against the field's maximum.
// Empty and non-numeric values are not limit-checked.
func CheckLimit(dept Department, field, value string) error {
	max, ok := LimitFor(dept, field)
	if !ok {
		return nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	if num > max {
		msg := fmt.Sprintf("the maximum score for %s is %s", field, FormatNumber(max))
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: field, Error: msg})
	}
	return nil
}

// ValidateScores checks every value of scores against its field's maximum and reports all violations at once.
func ValidateScores(dept Department, scores map[string]string) error {
	var fldErrs []core.FieldError
	for _, k := range sortedKeys(scores) {
		if err := CheckLimit(dept, k, scores[k]); err != nil {
			if vErr, ok := err.(*core.ValidationError); ok {
				fldErrs = append(fldErrs, vErr.Fields...)
			}
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(errors.New("score limits exceeded"), fldErrs...)
	}
	return nil
}

// FilterForSubmit keeps only dept's fields out of scores (under the caller's spelling of the key)
// so that formula columns are never written. Elementary and Middle get a default 0 adjustment.
// Without a department the raw and adjustment columns are kept.
func FilterForSubmit(dept Department, scores map[string]string) map[string]string {
	filtered := make(map[string]string)
	if dept == "" {
		for k, v := range scores {
			if IsRaw(k) || IsAdjustment(k) {
				filtered[k] = v
			}
		}
		return filtered
	}
	for _, f := range FieldsFor(dept) {
		if v, ok := scores[f]; ok {
			filtered[f] = v
		} else if k, ok := matchKey(scores, f); ok {
			filtered[k] = scores[k]
		}
	}
	if dept == Elementary || dept == Middle {
		if v, _ := Lookup(filtered, adjustmentField); strings.TrimSpace(v) == "" {
			if k, ok := matchKey(filtered, adjustmentField); ok {
				filtered[k] = "0"
			} else {
				filtered[adjustmentField] = "0"
			}
		}
	}
	return filtered
}

// ParseNumber parses a cell value, returning 0 for anything that is not a number.
func ParseNumber(v string) float64 {
	num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0
	}
	return num
}

// FormatNumber renders a number the way a spreadsheet displays it (no trailing zeros).
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
