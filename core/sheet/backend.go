package sheet

import (
	"context"
)

// SheetInfo describes one tab of a spreadsheet.
type SheetInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Index int    `json:"index"`
}

// ValueRange is one block of a batched write.
type ValueRange struct {
	Range  string
	Values [][]string
}

// Backend is the remote spreadsheet service. Ranges are A1 strings (see Range).
// Values returns the rectangle trimmed of trailing empty rows and trailing empty cells per row.
// Writes are interpreted as if typed by a user, so "=SUM(...)" becomes a formula.
type Backend interface {
	Sheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error)
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]string) error
	BatchUpdate(ctx context.Context, spreadsheetID string, data []ValueRange) error
	Clear(ctx context.Context, spreadsheetID, rng string) error
	// DuplicateSheet copies a tab, inserting the copy as the first tab.
	DuplicateSheet(ctx context.Context, spreadsheetID string, sourceID int64, title string) (SheetInfo, error)
	DeleteSheet(ctx context.Context, spreadsheetID string, sheetID int64) error
	RenameSheet(ctx context.Context, spreadsheetID string, sheetID int64, title string) error
}
