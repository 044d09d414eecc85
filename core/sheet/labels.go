package sheet

import (
	"context"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
)

// The reference-label block occupies rows 2..4 of the label column.
const (
	labelFirstRow = 2
	labelLastRow  = 4
)

// Labels names the sheets compared against: [1 semester ago, 2 ago, 3 ago].
type Labels [3]string

// ErrLabelColumnNotFound is returned when a sheet has no label column to write to.
// It is a recoverable warning: nothing was written and nothing is broken.
var ErrLabelColumnNotFound = core.NewWarning("this sheet has no reference label column (lastmark)")

// LabelStore persists the reference-label block of a sheet.
// It never touches rows past labelLastRow nor any other column.
type LabelStore struct {
	backend       Backend
	spreadsheetID string
	logger        core.Logger
}

func NewLabelStore(backend Backend, spreadsheetID string, logger core.Logger) *LabelStore {
	return &LabelStore{backend: backend, spreadsheetID: spreadsheetID, logger: logger}
}

// ReadLabels returns the three labels of sheet; all empty when the sheet has no label column.
func (s *LabelStore) ReadLabels(ctx context.Context, sheet string) (Labels, error) {
	var labels Labels
	col, err := s.column(ctx, sheet)
	if err != nil || col == NotFound {
		return labels, err
	}
	rng := s.block(sheet, col)
	rows, err := s.backend.Values(ctx, s.spreadsheetID, rng)
	if err != nil {
		s.logger.Error("reading labels", err, map[string]interface{}{"range": rng})
		return labels, errors.Wrapf(err, "reading %s", rng)
	}
	for i := range labels {
		if i < len(rows) {
			labels[i] = cell(rows[i], 0)
		}
	}
	return labels, nil
}

// WriteLabels overwrites the label block of sheet in one update.
func (s *LabelStore) WriteLabels(ctx context.Context, sheet string, labels Labels) error {
	col, err := s.column(ctx, sheet)
	if err != nil {
		return err
	}
	if col == NotFound {
		s.logger.Warn("label column not found", map[string]interface{}{"sheet": sheet})
		return ErrLabelColumnNotFound
	}
	rng := s.block(sheet, col)
	values := [][]string{{labels[0]}, {labels[1]}, {labels[2]}}
	if err := s.backend.Update(ctx, s.spreadsheetID, rng, values); err != nil {
		s.logger.Error("writing labels", err, map[string]interface{}{"range": rng})
		return errors.Wrapf(err, "writing %s", rng)
	}
	return nil
}

func (s *LabelStore) column(ctx context.Context, sheet string) (int, error) {
	rng := Rows(sheet, 1, 1).String()
	rows, err := s.backend.Values(ctx, s.spreadsheetID, rng)
	if err != nil {
		s.logger.Error("reading header", err, map[string]interface{}{"range": rng})
		return NotFound, errors.Wrapf(err, "reading %s", rng)
	}
	if len(rows) == 0 {
		return NotFound, nil
	}
	return Header(rows[0]).Field(FieldLabels), nil
}

func (s *LabelStore) block(sheet string, col int) string {
	letter := ColumnLetter(col)
	return Range{Sheet: sheet, StartCol: letter, StartRow: labelFirstRow, EndCol: letter, EndRow: labelLastRow}.String()
}
