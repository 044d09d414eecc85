package xlsxsheets

import (
	"fmt"

	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

// templateRows is how far down the SUM formula of a seeded template is filled.
const templateRows = 300

// SeedTemplates creates spreadsheetID with one template sheet per department. The SUM column
// of each template adds up the department's fields on every row.
func SeedTemplates(db *DB, spreadsheetID string) error {
	for _, dept := range score.Departments {
		header := sheet.TemplateHeader(dept)
		rows := [][]string{header}

		h := sheet.Header(header)
		fields := score.FieldsFor(dept)
		first, last := h.Index(fields[0]), h.Index(fields[len(fields)-1])
		sumCol := h.Index(score.SumHeader)
		for r := 2; r <= templateRows; r++ {
			row := make([]string, sumCol+1)
			row[sumCol] = fmt.Sprintf("=SUM(%s%d:%s%d)", sheet.ColumnLetter(first), r, sheet.ColumnLetter(last), r)
			rows = append(rows, row)
		}

		if _, err := db.AddSheet(spreadsheetID, sheet.TemplateTitle(dept), rows); err != nil {
			return err
		}
	}
	return nil
}
