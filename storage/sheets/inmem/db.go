package inmemsheets

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

// Formula computes the displayed value of a formula column from the rest of its row.
type Formula func(header, row []string) string

// SumOf returns a Formula adding up the numeric cells under the given header labels.
func SumOf(labels ...string) Formula {
	return func(header, row []string) string {
		h := sheet.Header(header)
		var total float64
		for _, l := range labels {
			if i := h.Index(l); i != sheet.NotFound && i < len(row) {
				total += score.ParseNumber(row[i])
			}
		}
		return score.FormatNumber(total)
	}
}

type cellKey struct {
	row, col int
}

type tab struct {
	id        int64
	title     string
	cells     [][]string
	formulas  map[int]Formula
	overrides map[cellKey]bool // formula cells replaced by a typed value
}

type workbook struct {
	tabs []*tab
}

// DB is an in-memory spreadsheet service holding any number of spreadsheets.
// Formula columns are evaluated on read for every row that has content, like a
// template whose formulas were filled down.
type DB struct {
	mutex sync.RWMutex
	books map[string]*workbook
}

var _ sheet.Backend = (*DB)(nil)

func NewDB() *DB {
	return &DB{books: make(map[string]*workbook)}
}

// AddSheet appends a tab to spreadsheetID (created on first use). formulas maps header labels to
// the formula of their column.
func (db *DB) AddSheet(spreadsheetID, title string, rows [][]string, formulas map[string]Formula) (sheet.SheetInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	book, ok := db.books[spreadsheetID]
	if !ok {
		book = &workbook{}
		db.books[spreadsheetID] = book
	}
	if _, found := book.find(title); found {
		return sheet.SheetInfo{}, errors.Errorf("a sheet named %q already exists", title)
	}
	t := &tab{
		id:        db.newID(),
		title:     title,
		cells:     copyGrid(rows),
		formulas:  make(map[int]Formula),
		overrides: make(map[cellKey]bool),
	}
	if len(rows) > 0 {
		header := sheet.Header(rows[0])
		for label, f := range formulas {
			if i := header.Index(label); i != sheet.NotFound {
				t.formulas[i] = f
			}
		}
	}
	book.tabs = append(book.tabs, t)
	return sheet.SheetInfo{ID: t.id, Title: t.title, Index: len(book.tabs) - 1}, nil
}

func (db *DB) Sheets(_ context.Context, spreadsheetID string) ([]sheet.SheetInfo, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	book, err := db.book(spreadsheetID)
	if err != nil {
		return nil, err
	}
	infos := make([]sheet.SheetInfo, len(book.tabs))
	for i, t := range book.tabs {
		infos[i] = sheet.SheetInfo{ID: t.id, Title: t.title, Index: i}
	}
	return infos, nil
}

func (db *DB) Values(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, r, err := db.resolve(spreadsheetID, rng)
	if err != nil {
		return nil, err
	}
	return r.Extract(t.evaluate()), nil
}

func (db *DB) Update(_ context.Context, spreadsheetID, rng string, values [][]string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, r, err := db.resolve(spreadsheetID, rng)
	if err != nil {
		return err
	}
	t.write(r, values)
	return nil
}

// BatchUpdate validates every range before writing any of them.
func (db *DB) BatchUpdate(_ context.Context, spreadsheetID string, data []sheet.ValueRange) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	type op struct {
		t      *tab
		r      sheet.Range
		values [][]string
	}
	ops := make([]op, 0, len(data))
	for _, vr := range data {
		t, r, err := db.resolve(spreadsheetID, vr.Range)
		if err != nil {
			return err
		}
		ops = append(ops, op{t, r, vr.Values})
	}
	for _, o := range ops {
		o.t.write(o.r, o.values)
	}
	return nil
}

func (db *DB) Clear(_ context.Context, spreadsheetID, rng string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, r, err := db.resolve(spreadsheetID, rng)
	if err != nil {
		return err
	}
	startCol, endCol, startRow, endRow := r.Bounds()
	if endRow <= 0 || endRow > len(t.cells) {
		endRow = len(t.cells)
	}
	for ri := startRow - 1; ri < endRow; ri++ {
		row := t.cells[ri]
		last := len(row) - 1
		if endCol >= 0 && endCol < last {
			last = endCol
		}
		for ci := startCol; ci <= last; ci++ {
			row[ci] = ""
		}
		for k := range t.overrides {
			if k.row == ri && k.col >= startCol && (endCol < 0 || k.col <= endCol) {
				delete(t.overrides, k)
			}
		}
	}
	return nil
}

func (db *DB) DuplicateSheet(_ context.Context, spreadsheetID string, sourceID int64, title string) (sheet.SheetInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	book, err := db.book(spreadsheetID)
	if err != nil {
		return sheet.SheetInfo{}, err
	}
	src, ok := book.byID(sourceID)
	if !ok {
		return sheet.SheetInfo{}, core.NewNotFoundError("no sheet with that id")
	}
	if _, found := book.find(title); found {
		return sheet.SheetInfo{}, errors.Errorf("a sheet named %q already exists", title)
	}
	cp := &tab{
		id:        db.newID(),
		title:     title,
		cells:     copyGrid(src.cells),
		formulas:  make(map[int]Formula, len(src.formulas)),
		overrides: make(map[cellKey]bool, len(src.overrides)),
	}
	for c, f := range src.formulas {
		cp.formulas[c] = f
	}
	for k, v := range src.overrides {
		cp.overrides[k] = v
	}
	book.tabs = append([]*tab{cp}, book.tabs...)
	return sheet.SheetInfo{ID: cp.id, Title: cp.title, Index: 0}, nil
}

func (db *DB) DeleteSheet(_ context.Context, spreadsheetID string, sheetID int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	book, err := db.book(spreadsheetID)
	if err != nil {
		return err
	}
	for i, t := range book.tabs {
		if t.id == sheetID {
			book.tabs = append(book.tabs[:i], book.tabs[i+1:]...)
			return nil
		}
	}
	return core.NewNotFoundError("no sheet with that id")
}

func (db *DB) RenameSheet(_ context.Context, spreadsheetID string, sheetID int64, title string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	book, err := db.book(spreadsheetID)
	if err != nil {
		return err
	}
	t, ok := book.byID(sheetID)
	if !ok {
		return core.NewNotFoundError("no sheet with that id")
	}
	if other, found := book.find(title); found && other != t {
		return errors.Errorf("a sheet named %q already exists", title)
	}
	t.title = title
	return nil
}

func (db *DB) book(spreadsheetID string) (*workbook, error) {
	book, ok := db.books[spreadsheetID]
	if !ok {
		return nil, core.NewNotFoundError("spreadsheet not found: " + spreadsheetID)
	}
	return book, nil
}

func (db *DB) resolve(spreadsheetID, rng string) (*tab, sheet.Range, error) {
	book, err := db.book(spreadsheetID)
	if err != nil {
		return nil, sheet.Range{}, err
	}
	r, err := sheet.ParseRange(rng)
	if err != nil {
		return nil, sheet.Range{}, err
	}
	t, ok := book.find(r.Sheet)
	if !ok {
		return nil, sheet.Range{}, core.NewNotFoundError("unable to parse range: " + rng)
	}
	return t, r, nil
}

// newID returns a sheet id unique across the DB. Callers hold the write lock.
func (db *DB) newID() int64 {
	for {
		id := int64(uuid.New().ID() & 0x7fffffff)
		taken := false
		for _, b := range db.books {
			if _, ok := b.byID(id); ok {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func (b *workbook) find(title string) (*tab, bool) {
	for _, t := range b.tabs {
		if t.title == title {
			return t, true
		}
	}
	return nil, false
}

func (b *workbook) byID(id int64) (*tab, bool) {
	for _, t := range b.tabs {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// write stores values from the top-left of r. Callers hold the write lock.
func (t *tab) write(r sheet.Range, values [][]string) {
	startCol, _, startRow, _ := r.Bounds()
	for i, vals := range values {
		ri := startRow - 1 + i
		for len(t.cells) <= ri {
			t.cells = append(t.cells, nil)
		}
		for j, v := range vals {
			ci := startCol + j
			for len(t.cells[ri]) <= ci {
				t.cells[ri] = append(t.cells[ri], "")
			}
			t.cells[ri][ci] = v
			if _, ok := t.formulas[ci]; ok && ri > 0 {
				t.overrides[cellKey{ri, ci}] = true
			}
		}
	}
}

// evaluate returns the displayed grid with formula columns computed.
func (t *tab) evaluate() [][]string {
	grid := copyGrid(t.cells)
	if len(grid) == 0 || len(t.formulas) == 0 {
		return grid
	}
	header := grid[0]
	for ri := 1; ri < len(grid); ri++ {
		if !t.hasContent(ri) {
			continue
		}
		src := grid[ri]
		row := append([]string(nil), src...)
		for ci, f := range t.formulas {
			if t.overrides[cellKey{ri, ci}] {
				continue
			}
			for len(row) <= ci {
				row = append(row, "")
			}
			row[ci] = f(header, src)
		}
		grid[ri] = row
	}
	return grid
}

// hasContent reports whether row ri has any typed value outside the formula columns.
func (t *tab) hasContent(ri int) bool {
	for ci, v := range t.cells[ri] {
		if _, ok := t.formulas[ci]; ok && !t.overrides[cellKey{ri, ci}] {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func copyGrid(rows [][]string) [][]string {
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = append([]string(nil), r...)
	}
	return grid
}
