// Package gsheets talks to the Google Sheets v4 API.
package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
)

// Values are written as if typed into the UI, so "=SUM(..)" stays a formula.
const valueInput = "USER_ENTERED"

type DB struct {
	svc *sheets.Service
}

var _ sheet.Backend = (*DB)(nil)

// NewDB connects with the service account key at credentialsFile, or with the application
// default credentials when it is empty.
func NewDB(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*DB, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets client")
	}
	return &DB{svc: svc}, nil
}

func (db *DB) Sheets(ctx context.Context, spreadsheetID string) ([]sheet.SheetInfo, error) {
	ss, err := db.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "listing sheets")
	}
	infos := make([]sheet.SheetInfo, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		infos = append(infos, infoOf(s.Properties))
	}
	return infos, nil
}

func (db *DB) Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	vr, err := db.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "reading "+rng)
	}
	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out, nil
}

func (db *DB) Update(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	_, err := db.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: toInterfaces(values)}).
		ValueInputOption(valueInput).
		Context(ctx).Do()
	return translate(err, "writing "+rng)
}

func (db *DB) BatchUpdate(ctx context.Context, spreadsheetID string, data []sheet.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInput}
	for _, vr := range data {
		req.Data = append(req.Data, &sheets.ValueRange{Range: vr.Range, Values: toInterfaces(vr.Values)})
	}
	_, err := db.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return translate(err, "writing batch")
}

func (db *DB) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := db.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return translate(err, "clearing "+rng)
}

func (db *DB) DuplicateSheet(ctx context.Context, spreadsheetID string, sourceID int64, title string) (sheet.SheetInfo, error) {
	resp, err := db.batch(ctx, spreadsheetID, &sheets.Request{
		DuplicateSheet: &sheets.DuplicateSheetRequest{
			SourceSheetId:    sourceID,
			InsertSheetIndex: 0,
			NewSheetName:     title,
			ForceSendFields:  []string{"SourceSheetId", "InsertSheetIndex"},
		},
	})
	if err != nil {
		return sheet.SheetInfo{}, translate(err, "duplicating sheet")
	}
	if len(resp.Replies) == 0 || resp.Replies[0].DuplicateSheet == nil || resp.Replies[0].DuplicateSheet.Properties == nil {
		return sheet.SheetInfo{}, errors.New("duplicating sheet: empty reply")
	}
	return infoOf(resp.Replies[0].DuplicateSheet.Properties), nil
}

func (db *DB) DeleteSheet(ctx context.Context, spreadsheetID string, sheetID int64) error {
	_, err := db.batch(ctx, spreadsheetID, &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{SheetId: sheetID, ForceSendFields: []string{"SheetId"}},
	})
	return translate(err, "deleting sheet")
}

func (db *DB) RenameSheet(ctx context.Context, spreadsheetID string, sheetID int64, title string) error {
	_, err := db.batch(ctx, spreadsheetID, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{SheetId: sheetID, Title: title, ForceSendFields: []string{"SheetId"}},
			Fields:     "title",
		},
	})
	return translate(err, "renaming sheet")
}

func (db *DB) batch(ctx context.Context, spreadsheetID string, reqs ...*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return db.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
}

func infoOf(p *sheets.SheetProperties) sheet.SheetInfo {
	return sheet.SheetInfo{ID: p.SheetId, Title: p.Title, Index: int(p.Index)}
}

func toInterfaces(values [][]string) [][]interface{} {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		out[i] = make([]interface{}, len(row))
		for j, v := range row {
			out[i][j] = v
		}
	}
	return out
}

// translate maps API failures the user can fix (unknown spreadsheet, sheet or range) to
// core.NotFoundError and wraps everything else.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized:
			// the service credentials were revoked: nothing can be served anymore
			return core.NewShutdownError(action + ": " + apiErr.Message)
		case apiErr.Code == http.StatusNotFound:
			return core.NewNotFoundError(action + ": spreadsheet not found")
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return core.NewNotFoundError(action + ": " + apiErr.Message)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "already exists"):
			return core.NewValidationError(errors.New(apiErr.Message))
		}
	}
	return errors.Wrap(err, action)
}
