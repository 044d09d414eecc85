package sheet

import "github.com/impact7/scoredesk/core/score"

// identity columns of every exam sheet, up to and including the exam-type sentinel
var baseHeader = []string{"이름", "학교", "학년", "응시일", "소속", "시험종류"}

// TemplateHeader returns the header row of dept's template sheet:
// identity columns, the department's raw fields, the computed totals and the label column.
func TemplateHeader(dept score.Department) []string {
	header := append([]string(nil), baseHeader...)
	header = append(header, score.FieldsFor(dept)...)
	return append(header, score.SumHeader, score.AvgSumHeader, score.TopSumHeader, Synonyms[FieldLabels][0])
}

// TemplateTitle is the default title of dept's template sheet.
func TemplateTitle(dept score.Department) string {
	return DefaultTemplatePrefix + string(dept)
}
