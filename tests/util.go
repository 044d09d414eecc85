package testutil

import (
	"testing"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
	inmemsheets "github.com/impact7/scoredesk/storage/sheets/inmem"
)

// SpreadsheetID is the id of the seeded test spreadsheet.
const SpreadsheetID = "test-spreadsheet"

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewBackend returns an in-memory spreadsheet holding the three department templates.
func NewBackend(t *testing.T) *inmemsheets.DB {
	db := inmemsheets.NewDB()
	if err := inmemsheets.SeedTemplates(db, SpreadsheetID); err != nil {
		t.Fatalf("NewBackend() failed: %v", err)
	}
	return db
}

// AddSheet adds a sheet with the given rows; a "SUM" column sums the columns listed in sumOf.
func AddSheet(t *testing.T, db *inmemsheets.DB, title string, rows [][]string, sumOf ...string) sheet.SheetInfo {
	var formulas map[string]inmemsheets.Formula
	if len(sumOf) > 0 {
		formulas = map[string]inmemsheets.Formula{score.SumHeader: inmemsheets.SumOf(sumOf...)}
	}
	info, err := db.AddSheet(SpreadsheetID, title, rows, formulas)
	if err != nil {
		t.Fatalf("AddSheet(%q) failed: %v", title, err)
	}
	return info
}

// AddExamSheet adds a sheet laid out like dept's template followed by the given data rows
// (identity columns first, then the department's fields in order).
func AddExamSheet(t *testing.T, db *inmemsheets.DB, title string, dept score.Department, data ...[]string) sheet.SheetInfo {
	rows := [][]string{sheet.TemplateHeader(dept)}
	rows = append(rows, data...)
	return AddSheet(t, db, title, rows, score.FieldsFor(dept)...)
}
