// Package score holds the static per-department scoring rules: which raw-score fields a department
// enters, their legal maxima, how completion is decided and where the authoritative total comes from.
package score

import (
	"github.com/impact7/scoredesk/core"
)

// Department is one of the three fixed cohorts. Departments are a closed set.
type Department string

const (
	Elementary Department = "초등부"
	Middle     Department = "중등부"
	High       Department = "고등부"
)

// Departments in inference precedence order.
var Departments = []Department{Elementary, Middle, High}

// Well-known header labels
const (
	SumHeader     = "SUM"      // spreadsheet-computed total (formula column)
	AvgSumHeader  = "SUM(av)"  // cohort average companion column
	TopSumHeader  = "SUM(30%)" // top-30% companion column
	AdjustmentTag = "보정"       // individual adjustment/curve fields
	RawTag        = "raw"      // raw input columns
	UnitPoints    = "점"
)

// Field is one raw-score input column of a department.
type Field struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// IsAdjustment reports whether the field is an individual adjustment, which is never required.
func (f Field) IsAdjustment() bool {
	return IsAdjustment(f.Name)
}

// Spec is the scoring specification of a department.
type Spec struct {
	Department Department `json:"department"`
	Fields     []Field    `json:"fields"`
	Grades     []string   `json:"grades"`
}

var (
	juniorFields = []Field{
		{Name: "L/C (Raw)", Max: 10, Unit: UnitPoints},
		{Name: "Voca (Raw)", Max: 25, Unit: UnitPoints},
		{Name: "Gr (Raw)", Max: 25, Unit: UnitPoints},
		{Name: "R/C (Raw)", Max: 15, Unit: UnitPoints},
		{Name: "Syn (Raw)", Max: 25, Unit: UnitPoints},
		{Name: "개별보정 (Raw)", Max: 100, Unit: UnitPoints},
	}

	specs = map[Department]Spec{
		Elementary: {
			Department: Elementary,
			Fields:     juniorFields,
			Grades:     []string{"초4", "초5", "초6"},
		},
		Middle: {
			Department: Middle,
			Fields:     juniorFields,
			Grades:     []string{"초6", "중1", "중2", "중3"},
		},
		High: {
			Department: High,
			Fields: []Field{
				{Name: "청해 (Raw)", Max: 10, Unit: UnitPoints},
				{Name: "대의파악 (Raw)", Max: 5, Unit: UnitPoints},
				{Name: "문법어휘 (Raw)", Max: 10, Unit: UnitPoints},
				{Name: "세부사항 (Raw)", Max: 5, Unit: UnitPoints},
				{Name: "빈칸추론 (Raw)", Max: 10, Unit: UnitPoints},
				{Name: "간접쓰기 (Raw)", Max: 10, Unit: UnitPoints},
			},
			Grades: []string{"중3", "고1", "고2", "고3", "기타"},
		},
	}

	// subject names only the high-school exam has
	highSubjectMarkers = []string{"청해", "대의파악", "빈칸"}

	// adjustment field defaulted to 0 on submit
	adjustmentField = "개별보정 (Raw)"
)

// ParseDepartment returns the Department named by s, if any.
func ParseDepartment(s string) (Department, bool) {
	d := Department(core.CleanString(s))
	_, ok := specs[d]
	return d, ok
}

// SpecFor returns the specification of dept. Unknown departments get an empty Spec.
func SpecFor(dept Department) (Spec, bool) {
	spec, ok := specs[dept]
	return spec, ok
}

// AllSpecs returns every department specification in precedence order.
func AllSpecs() []Spec {
	all := make([]Spec, 0, len(Departments))
	for _, d := range Departments {
		all = append(all, specs[d])
	}
	return all
}

// FieldsFor returns the ordered raw-score field names of dept; unknown departments have none.
func FieldsFor(dept Department) []string {
	spec, ok := specs[dept]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		names = append(names, f.Name)
	}
	return names
}

// LimitFor returns the maximum legal raw value of a field. ok is false when the field is unbounded.
func LimitFor(dept Department, field string) (max float64, ok bool) {
	if f, found := lookupField(dept, field); found {
		return f.Max, true
	}
	return 0, false
}

// UnitFor returns the display unit of a field, or "" if unknown.
func UnitFor(dept Department, field string) string {
	if f, found := lookupField(dept, field); found {
		return f.Unit
	}
	return ""
}

// GradeOptions returns the grade labels offered when entering a student of dept.
// Lists overlap across departments; see InferDept for the resolution order.
func GradeOptions(dept Department) []string {
	return append([]string(nil), specs[dept].Grades...)
}

func lookupField(dept Department, field string) (Field, bool) {
	key := core.NormalizeLabel(field)
	for _, f := range specs[dept].Fields {
		if core.NormalizeLabel(f.Name) == key {
			return f, true
		}
	}
	return Field{}, false
}
