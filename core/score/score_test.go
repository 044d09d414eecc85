package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impact7/scoredesk/core"
)

func TestFieldsFor(t *testing.T) {
	assert.Equal(t,
		[]string{"L/C (Raw)", "Voca (Raw)", "Gr (Raw)", "R/C (Raw)", "Syn (Raw)", "개별보정 (Raw)"},
		FieldsFor(Elementary),
	)
	assert.Equal(t, FieldsFor(Elementary), FieldsFor(Middle))
	assert.Len(t, FieldsFor(High), 6)
	assert.NotNil(t, FieldsFor("대학부"))
	assert.Empty(t, FieldsFor("대학부"))
}

func TestLimitFor(t *testing.T) {
	tests := []struct {
		dept  Department
		field string
		max   float64
		ok    bool
	}{
		{Elementary, "L/C (Raw)", 10, true},
		{Middle, "voca(raw)", 25, true},
		{Middle, "개별보정 (Raw)", 100, true},
		{High, "대의파악 (Raw)", 5, true},
		{High, "L/C (Raw)", 0, false},
		{"", "L/C (Raw)", 0, false},
		{Elementary, "SUM", 0, false},
	}
	for _, tt := range tests {
		max, ok := LimitFor(tt.dept, tt.field)
		if max != tt.max || ok != tt.ok {
			t.Errorf("LimitFor(%s, %q) = %v, %v; want %v, %v", tt.dept, tt.field, max, ok, tt.max, tt.ok)
		}
	}
	assert.Equal(t, UnitPoints, UnitFor(High, "청해 (Raw)"))
	assert.Equal(t, "", UnitFor(High, "SUM"))
}

func TestIsComplete(t *testing.T) {
	scores := map[string]string{
		"L/C (Raw)":  "8",
		"voca (raw)": "20",
		"Gr (Raw)":   "0",
		"R/C (Raw)":  "11",
		"SUM":        "",
	}
	assert.False(t, IsComplete(Middle, scores))

	// the last missing required field flips it; the adjustment is never required
	scores["Syn (Raw)"] = "14"
	assert.True(t, IsComplete(Middle, scores))

	scores["R/C (Raw)"] = "  "
	assert.False(t, IsComplete(Middle, scores))
}

func TestIsComplete_WithoutDepartment(t *testing.T) {
	scores := map[string]string{
		"Reading (RAW)":   "3",
		"개별보정 (Raw)":      "",
		"SUM":             "",
		"Listening (Raw)": "",
	}
	assert.False(t, IsComplete("", scores))

	scores["Listening (Raw)"] = "4"
	assert.True(t, IsComplete("", scores), "adjustments and non-raw columns are not required")
}

func TestAggregateSum(t *testing.T) {
	assert.Equal(t, 71.5, AggregateSum(map[string]string{"SUM": "71.5", "L/C (Raw)": "100"}))
	assert.Equal(t, 0.0, AggregateSum(map[string]string{"L/C (Raw)": "100"}))
	assert.Equal(t, 0.0, AggregateSum(map[string]string{"SUM": "#REF!"}))
	assert.Equal(t, 0.0, AggregateSum(map[string]string{"SUM": "NaN"}))
	assert.Equal(t, 12.0, AggregateSum(map[string]string{" sum ": " 12 "}))
}

func TestPreviewSum(t *testing.T) {
	scores := map[string]string{"L/C (Raw)": "8", "Voca (Raw)": "20", "개별보정 (Raw)": "-2", "SUM": "999", "Extra": "5"}
	assert.Equal(t, Preview(26), PreviewSum(Middle, scores))
	assert.Equal(t, Preview(26), PreviewSum("", scores))
}

func TestInferDept(t *testing.T) {
	tests := []struct {
		grade string
		keys  []string
		want  Department
	}{
		{"초4", nil, Elementary},
		{"초6", nil, Elementary},
		{"중1", nil, Middle},
		{" 중3 ", nil, Middle},
		{"고1", nil, High},
		{"기타", nil, High},
		{"", nil, ""},
		{"대1", nil, ""},
		{"중2", []string{"L/C (Raw)", "빈칸추론 (Raw)"}, High},
		{"", []string{"청해"}, High},
		{"초5", []string{"대의파악 (Raw)"}, High},
	}
	for _, tt := range tests {
		if got := InferDept(tt.grade, tt.keys); got != tt.want {
			t.Errorf("InferDept(%q, %v) = %q; want %q", tt.grade, tt.keys, got, tt.want)
		}
	}
}

func TestValidateScores(t *testing.T) {
	assert.NoError(t, CheckLimit(Elementary, "L/C (Raw)", "10"))
	assert.NoError(t, CheckLimit(Elementary, "L/C (Raw)", ""))
	assert.NoError(t, CheckLimit(Elementary, "L/C (Raw)", "abc"))
	assert.NoError(t, CheckLimit(Elementary, "SUM", "1000"))
	assert.Error(t, CheckLimit(Elementary, "L/C (Raw)", "10.5"))

	err := ValidateScores(High, map[string]string{
		"청해 (Raw)":   "11",
		"대의파악 (Raw)": "6",
		"문법어휘 (Raw)": "10",
	})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, []core.FieldError{
		{Field: "대의파악 (Raw)", Error: "the maximum score for 대의파악 (Raw) is 5"},
		{Field: "청해 (Raw)", Error: "the maximum score for 청해 (Raw) is 10"},
	}, vErr.Fields)
}

func TestFilterForSubmit(t *testing.T) {
	scores := map[string]string{
		"L/C (Raw)":  "8",
		"voca (raw)": "20",
		"SUM":        "28",
		"SUM(av)":    "40",
		"lastmark":   "2025_Fall",
	}
	assert.Equal(t,
		map[string]string{"L/C (Raw)": "8", "voca (raw)": "20", "개별보정 (Raw)": "0"},
		FilterForSubmit(Middle, scores),
	)

	scores["개별보정(raw)"] = "3"
	assert.Equal(t, "3", FilterForSubmit(Elementary, scores)["개별보정(raw)"])

	assert.Equal(t, map[string]string{"청해 (Raw)": "7"}, FilterForSubmit(High, map[string]string{"청해 (Raw)": "7", "SUM": "7"}))
	assert.Equal(t,
		map[string]string{"L/C (Raw)": "8", "voca (raw)": "20", "개별보정(raw)": "3"},
		FilterForSubmit("", scores),
	)
	assert.Empty(t, FilterForSubmit("", map[string]string{"SUM": "28", "lastmark": "2025_Fall"}))
}

func TestCard(t *testing.T) {
	card := NewCard(Middle, map[string]string{
		"L/C (Raw)":         "8",
		"voca (raw)":        "20",
		"SUM":               "28",
		"EnglishSense(30%)": "71",
	})
	require.Len(t, card.Fields, 6)
	assert.Equal(t, "L/C (Raw)", card.Fields[0].Field.Name)
	assert.Equal(t, "8", card.Fields[0].Value)
	assert.Equal(t, "20", card.Fields[1].Value)
	assert.Equal(t, map[string]string{"SUM": "28", "EnglishSense(30%)": "71"}, card.Extra)
	assert.Equal(t, float64(28), card.Total())
	assert.False(t, card.Complete())

	v, ok := card.Value("Voca (Raw)")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
	v, ok = card.Value("englishsense(30%)")
	assert.True(t, ok)
	assert.Equal(t, "71", v)

	unknown := NewCard("", map[string]string{"X": "1"})
	assert.Empty(t, unknown.Fields)
	assert.Equal(t, map[string]string{"X": "1"}, unknown.Scores())
}

func TestGradeOptions(t *testing.T) {
	assert.Equal(t, []string{"초6", "중1", "중2", "중3"}, GradeOptions(Middle))
	opts := GradeOptions(High)
	opts[0] = "changed"
	assert.Equal(t, "중3", GradeOptions(High)[0])
	assert.Empty(t, GradeOptions("대학부"))
}

func TestParseDepartment(t *testing.T) {
	d, ok := ParseDepartment(" 고등부 ")
	assert.True(t, ok)
	assert.Equal(t, High, d)
	_, ok = ParseDepartment("대학부")
	assert.False(t, ok)
}

type scored struct {
	complete bool
	total    float64
}

func (s scored) Complete() bool { return s.complete }
func (s scored) Total() float64  { return s.total }

func TestSummarize(t *testing.T) {
	stats := Summarize([]scored{{true, 80}, {false, 0}, {true, 71}})
	assert.Equal(t, Stats{Total: 3, Completed: 2, Percent: 67, Average: 75.5}, stats)
	assert.Equal(t, Stats{}, Summarize([]scored{}))
}
