package sheet

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
)

// Record is one student's row, reconstructed on every read.
// ID is the current 1-based sheet row; it is positional and changes only if rows are
// physically inserted or removed upstream.
type Record struct {
	ID       int               `json:"id"`
	Name     string            `json:"name" validate:"required"`
	School   string            `json:"school"`
	Grade    string            `json:"grade"`
	Date     string            `json:"date"`
	Dept     string            `json:"dept"`
	Type     string            `json:"type"`
	Ref      string            `json:"ref"`
	DeptType score.Department  `json:"dept_type"`
	Scores   map[string]string `json:"scores"`
}

// Complete reports whether every required score of the record has been entered.
func (r Record) Complete() bool {
	return score.IsComplete(r.DeptType, r.Scores)
}

// Total returns the spreadsheet-computed total of the record.
func (r Record) Total() float64 {
	return score.AggregateSum(r.Scores)
}

// Card returns the record's scores split into its department's fields and extra columns.
func (r Record) Card() score.Card {
	return score.NewCard(r.DeptType, r.Scores)
}

// Snapshot is a sheet as read in one call.
type Snapshot struct {
	Title        string   `json:"title"`
	Header       Header   `json:"header"`
	ScoreHeaders []string `json:"score_headers"`
	Records      []Record `json:"records"`
}

// RecordAdapter reads and writes student records of the sheets of one spreadsheet.
// Writes touch only the cells of resolved columns, so formula columns are left alone.
type RecordAdapter struct {
	backend       Backend
	spreadsheetID string
	logger        core.Logger
}

func NewRecordAdapter(backend Backend, spreadsheetID string, logger core.Logger) *RecordAdapter {
	return &RecordAdapter{backend: backend, spreadsheetID: spreadsheetID, logger: logger}
}

// ListHeaders returns the score field universe of sheet: the labels after the exam-type column.
func (a *RecordAdapter) ListHeaders(ctx context.Context, sheet string) ([]string, error) {
	header, err := a.header(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return header.ScoreHeaders(), nil
}

// ListRecords returns the non-empty records of sheet in row order.
func (a *RecordAdapter) ListRecords(ctx context.Context, sheet string) ([]Record, error) {
	snap, err := a.Sheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Sheet reads the whole sheet once and returns its header, score headers and records.
func (a *RecordAdapter) Sheet(ctx context.Context, sheet string) (*Snapshot, error) {
	rows, err := a.values(ctx, FullRowSpan(sheet))
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Title: sheet, Header: Header{}, ScoreHeaders: []string{}, Records: []Record{}}
	if len(rows) == 0 {
		return snap, nil
	}
	snap.Header = Header(rows[0])
	snap.ScoreHeaders = snap.Header.ScoreHeaders()
	snap.Records = parseRecords(snap.Header, rows[1:])
	return snap, nil
}

// AppendRecord writes rec on the row after the last used row of the name column and returns that row.
// Fields whose header cannot be resolved are skipped, and reference-label columns are never written.
func (a *RecordAdapter) AppendRecord(ctx context.Context, sheet string, rec Record) (int, error) {
	header, err := a.header(ctx, sheet)
	if err != nil {
		return 0, err
	}
	nameCol := header.Field(FieldName)
	if nameCol == NotFound {
		nameCol = 0
	}
	column, err := a.values(ctx, Column(sheet, nameCol))
	if err != nil {
		return 0, err
	}
	row := lastUsedRow(column) + 1
	if row < 2 {
		row = 2
	}
	if err := a.write(ctx, sheet, row, cellWrites(header, rec, true)); err != nil {
		return 0, err
	}
	return row, nil
}

// UpdateRecord overwrites the resolved fields of rec on row. Reference-label columns are never written.
func (a *RecordAdapter) UpdateRecord(ctx context.Context, sheet string, row int, rec Record) error {
	if row < 2 {
		return core.NewValidationError(errors.Errorf("invalid record row %d", row))
	}
	header, err := a.header(ctx, sheet)
	if err != nil {
		return err
	}
	return a.write(ctx, sheet, row, cellWrites(header, rec, true))
}

// ClearRecord blanks every cell of row without removing the row. Clearing an empty row succeeds.
func (a *RecordAdapter) ClearRecord(ctx context.Context, sheet string, row int) error {
	if row < 2 {
		return core.NewValidationError(errors.Errorf("invalid record row %d", row))
	}
	rng := RowSpan(sheet, row).String()
	if err := a.backend.Clear(ctx, a.spreadsheetID, rng); err != nil {
		a.logger.Error("clearing record", err, map[string]interface{}{"range": rng})
		return errors.Wrapf(err, "clearing %s", rng)
	}
	return nil
}

// FindFieldValue returns the value under header of the last row whose name equals name.
// found is false when the name column, the header or the student cannot be resolved.
func (a *RecordAdapter) FindFieldValue(ctx context.Context, sheet, name, header string) (value string, found bool, err error) {
	rows, err := a.values(ctx, FullRowSpan(sheet))
	if err != nil || len(rows) < 2 {
		return "", false, err
	}
	h := Header(rows[0])
	nameCol, targetCol := h.Field(FieldName), h.Index(header)
	if nameCol == NotFound || targetCol == NotFound {
		return "", false, nil
	}
	name = strings.TrimSpace(name)
	for i := len(rows) - 1; i >= 1; i-- {
		if strings.TrimSpace(cell(rows[i], nameCol)) == name {
			return cell(rows[i], targetCol), true, nil
		}
	}
	return "", false, nil
}

func (a *RecordAdapter) header(ctx context.Context, sheet string) (Header, error) {
	rows, err := a.values(ctx, Rows(sheet, 1, 1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return Header{}, nil
	}
	return Header(rows[0]), nil
}

func (a *RecordAdapter) values(ctx context.Context, rng Range) ([][]string, error) {
	rows, err := a.backend.Values(ctx, a.spreadsheetID, rng.String())
	if err != nil {
		a.logger.Error("reading values", err, map[string]interface{}{"range": rng.String()})
		return nil, errors.Wrapf(err, "reading %s", rng)
	}
	return rows, nil
}

// write sends the resolved cells of one row as a single batched update.
func (a *RecordAdapter) write(ctx context.Context, sheet string, row int, cells map[int]string) error {
	if len(cells) == 0 {
		return nil
	}
	cols := make([]int, 0, len(cells))
	for c := range cells {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	data := make([]ValueRange, 0, len(cols))
	for _, c := range cols {
		data = append(data, ValueRange{Range: Cell(sheet, c, row).String(), Values: [][]string{{cells[c]}}})
	}
	if err := a.backend.BatchUpdate(ctx, a.spreadsheetID, data); err != nil {
		a.logger.Error("writing record", err, map[string]interface{}{"sheet": sheet, "row": row})
		return errors.Wrapf(err, "writing row %d of %s", row, sheet)
	}
	return nil
}

// cellWrites resolves the base fields and scores of rec to column positions.
// The exam type is written under every spelling present in the header.
func cellWrites(header Header, rec Record, skipLabels bool) map[int]string {
	cells := make(map[int]string)
	set := func(idx int, v string) {
		if idx != NotFound {
			cells[idx] = v
		}
	}
	set(header.Field(FieldName), rec.Name)
	set(header.Field(FieldSchool), rec.School)
	set(header.Field(FieldGrade), rec.Grade)
	set(header.Field(FieldDate), rec.Date)
	set(header.Field(FieldDept), rec.Dept)
	for _, label := range Synonyms[FieldType] {
		set(header.Index(label), rec.Type)
	}

	keys := make([]string, 0, len(rec.Scores))
	for k := range rec.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if skipLabels && IsLabelColumn(k) {
			continue
		}
		set(header.Index(k), rec.Scores[k])
	}
	return cells
}

func parseRecords(header Header, rows [][]string) []Record {
	var (
		nameCol   = header.Field(FieldName)
		schoolCol = header.Field(FieldSchool)
		gradeCol  = header.Field(FieldGrade)
		dateCol   = header.Field(FieldDate)
		deptCol   = header.Field(FieldDept)
		typeCol   = header.Field(FieldType)
		refCol    = header.Field(FieldRef)
		scoreKeys = header.ScoreHeaders()
	)
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		name := cell(row, nameCol)
		if strings.TrimSpace(name) == "" {
			continue
		}
		rec := Record{
			ID:     i + 2,
			Name:   name,
			School: cell(row, schoolCol),
			Grade:  cell(row, gradeCol),
			Date:   cell(row, dateCol),
			Dept:   cell(row, deptCol),
			Type:   cell(row, typeCol),
			Ref:    cell(row, refCol),
			Scores: make(map[string]string, len(scoreKeys)),
		}
		for _, k := range scoreKeys {
			rec.Scores[k] = cell(row, header.Index(k))
		}
		rec.DeptType = score.InferDept(rec.Grade, scoreKeys)
		records = append(records, rec)
	}
	return records
}

// lastUsedRow returns the 1-based row of the last non-blank cell of a single-column read.
func lastUsedRow(column [][]string) int {
	for i := len(column) - 1; i >= 0; i-- {
		if strings.TrimSpace(cell(column[i], 0)) != "" {
			return i + 1
		}
	}
	return 0
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
