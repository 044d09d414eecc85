// Package xlsxsheets keeps each spreadsheet as an .xlsx workbook in a local directory,
// for running the desk without a Google account. Formulas are evaluated on read.
//
// Unlike Google Sheets, a duplicated tab is appended after the existing tabs.
package xlsxsheets

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

// DB stores one workbook per spreadsheet id under dir. Every call opens, edits and saves
// the file so that concurrent processes see each other's writes.
type DB struct {
	dir   string
	mutex sync.Mutex
}

var _ sheet.Backend = (*DB)(nil)

func NewDB(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating workbook directory %s", dir)
	}
	return &DB{dir: dir}, nil
}

// Path returns the workbook file of spreadsheetID.
func (db *DB) Path(spreadsheetID string) (string, error) {
	id := strings.TrimSpace(spreadsheetID)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", core.NewValidationError(errors.Errorf("invalid spreadsheet id %q", spreadsheetID))
	}
	return filepath.Join(db.dir, id+".xlsx"), nil
}

// Exists reports whether spreadsheetID has a workbook yet.
func (db *DB) Exists(spreadsheetID string) bool {
	path, err := db.Path(spreadsheetID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// AddSheet appends a tab holding rows to spreadsheetID, creating the workbook on first use.
// Cells starting with "=" are stored as formulas.
func (db *DB) AddSheet(spreadsheetID, title string, rows [][]string) (sheet.SheetInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	path, err := db.Path(spreadsheetID)
	if err != nil {
		return sheet.SheetInfo{}, err
	}
	var f *excelize.File
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), title); err != nil {
			return sheet.SheetInfo{}, errors.Wrap(err, "naming first sheet")
		}
	} else {
		if f, err = db.open(spreadsheetID); err != nil {
			return sheet.SheetInfo{}, err
		}
		if idx, _ := f.GetSheetIndex(title); idx >= 0 {
			f.Close()
			return sheet.SheetInfo{}, errors.Errorf("a sheet named %q already exists", title)
		}
		if _, err := f.NewSheet(title); err != nil {
			f.Close()
			return sheet.SheetInfo{}, errors.Wrapf(err, "adding sheet %q", title)
		}
	}
	defer f.Close()

	r := sheet.Range{Sheet: title, StartCol: "A", StartRow: 1}
	if err := write(f, r, rows); err != nil {
		return sheet.SheetInfo{}, err
	}
	if err := f.SaveAs(path); err != nil {
		return sheet.SheetInfo{}, errors.Wrapf(err, "saving %s", path)
	}
	return infoOf(f, title)
}

func (db *DB) Sheets(_ context.Context, spreadsheetID string) ([]sheet.SheetInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, err := db.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ids := sheetIDs(f)
	names := f.GetSheetList()
	infos := make([]sheet.SheetInfo, len(names))
	for i, name := range names {
		infos[i] = sheet.SheetInfo{ID: ids[name], Title: name, Index: i}
	}
	return infos, nil
}

func (db *DB) Values(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, r, err := db.resolve(spreadsheetID, rng)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := evaluate(f, r.Sheet)
	if err != nil {
		return nil, err
	}
	return r.Extract(grid), nil
}

func (db *DB) Update(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	return db.BatchUpdate(ctx, spreadsheetID, []sheet.ValueRange{{Range: rng, Values: values}})
}

// BatchUpdate validates every range before writing any of them, and saves once.
func (db *DB) BatchUpdate(_ context.Context, spreadsheetID string, data []sheet.ValueRange) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, err := db.open(spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	ranges := make([]sheet.Range, len(data))
	for i, vr := range data {
		if ranges[i], err = checkRange(f, vr.Range); err != nil {
			return err
		}
	}
	for i, vr := range data {
		if err := write(f, ranges[i], vr.Values); err != nil {
			return err
		}
	}
	return db.save(f, spreadsheetID)
}

func (db *DB) Clear(_ context.Context, spreadsheetID, rng string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, r, err := db.resolve(spreadsheetID, rng)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(r.Sheet)
	if err != nil {
		return errors.Wrapf(err, "reading %s", r.Sheet)
	}
	var width int
	if len(rows) > 0 {
		width = len(rows[0])
	}
	startCol, endCol, startRow, endRow := r.Bounds()
	if endRow <= 0 || endRow > len(rows) {
		endRow = len(rows)
	}
	for ri := startRow - 1; ri < endRow; ri++ {
		last := len(rows[ri])
		if width > last {
			last = width
		}
		last--
		if endCol >= 0 && endCol < last {
			last = endCol
		}
		for ci := startCol; ci <= last; ci++ {
			if err := setCell(f, r.Sheet, ci, ri+1, ""); err != nil {
				return err
			}
		}
	}
	return db.save(f, spreadsheetID)
}

func (db *DB) DuplicateSheet(_ context.Context, spreadsheetID string, sourceID int64, title string) (sheet.SheetInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, err := db.open(spreadsheetID)
	if err != nil {
		return sheet.SheetInfo{}, err
	}
	defer f.Close()

	src, ok := nameOf(f, sourceID)
	if !ok {
		return sheet.SheetInfo{}, core.NewNotFoundError("no sheet with that id")
	}
	if idx, _ := f.GetSheetIndex(title); idx >= 0 {
		return sheet.SheetInfo{}, errors.Errorf("a sheet named %q already exists", title)
	}
	srcIdx, err := f.GetSheetIndex(src)
	if err != nil {
		return sheet.SheetInfo{}, errors.Wrapf(err, "locating sheet %q", src)
	}
	idx, err := f.NewSheet(title)
	if err != nil {
		return sheet.SheetInfo{}, errors.Wrapf(err, "adding sheet %q", title)
	}
	if err := f.CopySheet(srcIdx, idx); err != nil {
		return sheet.SheetInfo{}, errors.Wrapf(err, "copying sheet %q", src)
	}
	if err := db.save(f, spreadsheetID); err != nil {
		return sheet.SheetInfo{}, err
	}
	return infoOf(f, title)
}

func (db *DB) DeleteSheet(_ context.Context, spreadsheetID string, sheetID int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, err := db.open(spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	name, ok := nameOf(f, sheetID)
	if !ok {
		return core.NewNotFoundError("no sheet with that id")
	}
	if len(f.GetSheetList()) == 1 {
		return core.NewValidationError(errors.New("a workbook must keep at least one sheet"))
	}
	if err := f.DeleteSheet(name); err != nil {
		return errors.Wrapf(err, "deleting sheet %q", name)
	}
	return db.save(f, spreadsheetID)
}

func (db *DB) RenameSheet(_ context.Context, spreadsheetID string, sheetID int64, title string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	f, err := db.open(spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	name, ok := nameOf(f, sheetID)
	if !ok {
		return core.NewNotFoundError("no sheet with that id")
	}
	if name == title {
		return nil
	}
	if idx, _ := f.GetSheetIndex(title); idx >= 0 {
		return errors.Errorf("a sheet named %q already exists", title)
	}
	if err := f.SetSheetName(name, title); err != nil {
		return errors.Wrapf(err, "renaming sheet %q", name)
	}
	return db.save(f, spreadsheetID)
}

func (db *DB) open(spreadsheetID string) (*excelize.File, error) {
	path, err := db.Path(spreadsheetID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, core.NewNotFoundError("spreadsheet not found: " + spreadsheetID)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}

func (db *DB) save(f *excelize.File, spreadsheetID string) error {
	path, err := db.Path(spreadsheetID)
	if err != nil {
		return err
	}
	return errors.Wrapf(f.SaveAs(path), "saving %s", path)
}

// resolve opens the workbook and checks that rng names one of its sheets. The caller closes the file.
func (db *DB) resolve(spreadsheetID, rng string) (*excelize.File, sheet.Range, error) {
	f, err := db.open(spreadsheetID)
	if err != nil {
		return nil, sheet.Range{}, err
	}
	r, err := checkRange(f, rng)
	if err != nil {
		f.Close()
		return nil, sheet.Range{}, err
	}
	return f, r, nil
}

func checkRange(f *excelize.File, rng string) (sheet.Range, error) {
	r, err := sheet.ParseRange(rng)
	if err != nil {
		return sheet.Range{}, err
	}
	if idx, _ := f.GetSheetIndex(r.Sheet); idx < 0 {
		return sheet.Range{}, core.NewNotFoundError("unable to parse range: " + rng)
	}
	return r, nil
}

// sheetIDs maps sheet names to their workbook-level ids, which survive renames.
func sheetIDs(f *excelize.File) map[string]int64 {
	ids := make(map[string]int64)
	for id, name := range f.GetSheetMap() {
		ids[name] = int64(id)
	}
	return ids
}

func nameOf(f *excelize.File, sheetID int64) (string, bool) {
	name, ok := f.GetSheetMap()[int(sheetID)]
	return name, ok
}

func infoOf(f *excelize.File, title string) (sheet.SheetInfo, error) {
	for i, name := range f.GetSheetList() {
		if name == title {
			return sheet.SheetInfo{ID: sheetIDs(f)[name], Title: name, Index: i}, nil
		}
	}
	return sheet.SheetInfo{}, core.NewNotFoundError("sheet not found: " + title)
}

// write stores values from the top-left of r.
func write(f *excelize.File, r sheet.Range, values [][]string) error {
	startCol, _, startRow, _ := r.Bounds()
	for i, vals := range values {
		for j, v := range vals {
			if err := setCell(f, r.Sheet, startCol+j, startRow+i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// setCell writes v as if typed by a user: "=..." is a formula, numbers are numbers and ""
// empties the cell. col is 0-based, row 1-based.
func setCell(f *excelize.File, name string, col, row int, v string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return errors.Wrapf(err, "column %d row %d", col, row)
	}
	if strings.HasPrefix(v, "=") && len(v) > 1 {
		return errors.Wrapf(f.SetCellFormula(name, cell, v[1:]), "setting formula of %s", cell)
	}
	if formula, _ := f.GetCellFormula(name, cell); formula != "" {
		if err := f.SetCellFormula(name, cell, ""); err != nil {
			return errors.Wrapf(err, "removing formula of %s", cell)
		}
	}
	var value interface{}
	switch {
	case v == "":
		value = nil
	case isNumber(v):
		value, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		value = v
	}
	return errors.Wrapf(f.SetCellValue(name, cell, value), "setting %s", cell)
}

func isNumber(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(strings.ToLower(strings.TrimLeft(v, "+-")), "0x") {
		return false
	}
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
}

// evaluate returns the displayed grid of a sheet, computing the formula cells of every row
// that has content.
func evaluate(f *excelize.File, name string) ([][]string, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	width := len(rows[0])
	for ri := 1; ri < len(rows); ri++ {
		row := rows[ri]
		if !hasContent(row) {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		for ci := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, err
			}
			formula, err := f.GetCellFormula(name, cell)
			if err != nil {
				return nil, errors.Wrapf(err, "reading formula of %s", cell)
			}
			if formula == "" {
				continue
			}
			v, err := f.CalcCellValue(name, cell)
			if err != nil && v == "" {
				v = "#ERROR!"
			}
			row[ci] = displayNumber(v)
		}
		rows[ri] = row
	}
	return rows, nil
}

// displayNumber renders computed numbers the way they are typed, e.g. "28" instead of "28.000000".
func displayNumber(v string) string {
	if !isNumber(v) {
		return v
	}
	n, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return score.FormatNumber(n)
}

func hasContent(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
