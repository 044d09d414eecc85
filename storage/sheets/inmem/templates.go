package inmemsheets

import (
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

// SeedTemplates adds one template sheet per department to spreadsheetID, each with a SUM
// formula over the department's fields.
func SeedTemplates(db *DB, spreadsheetID string) error {
	for _, dept := range score.Departments {
		_, err := db.AddSheet(
			spreadsheetID,
			sheet.TemplateTitle(dept),
			[][]string{sheet.TemplateHeader(dept)},
			map[string]Formula{score.SumHeader: SumOf(score.FieldsFor(dept)...)},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
