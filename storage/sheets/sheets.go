// Package sheets opens the configured spreadsheet backend.
package sheets

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
	gsheets "github.com/impact7/scoredesk/storage/sheets/gsheets"
	inmemsheets "github.com/impact7/scoredesk/storage/sheets/inmem"
	xlsxsheets "github.com/impact7/scoredesk/storage/sheets/xlsx"
)

// LocalSpreadsheetID names the spreadsheet of the local backends when none is configured.
const LocalSpreadsheetID = "scores"

// Open returns the backend selected by conf.Sheets.Backend, seeding the department templates
// into a fresh local spreadsheet. It also fills in a missing SpreadsheetID for local backends.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (sheet.Backend, error) {
	if conf.Sheets.SpreadsheetID == "" && conf.Sheets.Backend != core.BackendGoogle {
		conf.Sheets.SpreadsheetID = LocalSpreadsheetID
	}
	id := conf.Sheets.SpreadsheetID

	switch conf.Sheets.Backend {
	case core.BackendMemory, "":
		db := inmemsheets.NewDB()
		if err := inmemsheets.SeedTemplates(db, id); err != nil {
			return nil, errors.Wrap(err, "seeding templates")
		}
		return db, nil

	case core.BackendXLSX:
		dir := conf.Sheets.XLSXDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(conf.WorkDir, dir)
		}
		db, err := xlsxsheets.NewDB(dir)
		if err != nil {
			return nil, err
		}
		if !db.Exists(id) {
			logger.Info(fmt.Sprintf("creating workbook %s with department templates", id))
			if err := xlsxsheets.SeedTemplates(db, id); err != nil {
				return nil, errors.Wrap(err, "seeding templates")
			}
		}
		return db, nil

	case core.BackendGoogle:
		if id == "" {
			return nil, errors.New("a spreadsheet id is required for the google backend")
		}
		db, err := gsheets.NewDB(ctx, conf.Sheets.CredentialsFile)
		if err != nil {
			return nil, err
		}
		if err := ping(ctx, db, id); err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, errors.Errorf("unknown sheets backend %q", conf.Sheets.Backend)
}

// ping waits for the spreadsheet to be reachable. Waits 100ms longer between each attempt.
// A spreadsheet that does not exist (or is not shared with us) fails at once.
func ping(ctx context.Context, db sheet.Backend, spreadsheetID string) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		_, err = db.Sheets(ctx, spreadsheetID)
		if err == nil || core.IsNotFound(err) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "spreadsheet ping")
	}
	return nil
}
