package sheet

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
)

// brokenRef is the token a spreadsheet shows for a formula whose reference no longer exists.
const brokenRef = "#REF!"

// Aggregates is a student's SUM over time: [3 semesters ago, 2 ago, 1 ago, current].
type Aggregates [4]string

// Trend converts the aggregates to numbers; empty and unparseable slots are 0.
func (a Aggregates) Trend() [4]float64 {
	var t [4]float64
	for i, v := range a {
		t[i] = score.ParseNumber(v)
	}
	return t
}

// TrendService looks a student's total up in the sheets referenced by the label block.
type TrendService struct {
	records *RecordAdapter
}

func NewTrendService(records *RecordAdapter) *TrendService {
	return &TrendService{records: records}
}

// PastAggregates returns the SUM of name in refs (refs[0] is one semester ago) and in current.
// Empty reference slots, sheets that no longer exist and students missing from a sheet yield "".
// Reference sheets are read concurrently.
func (s *TrendService) PastAggregates(ctx context.Context, name string, refs Labels, current string) (Aggregates, error) {
	var out Aggregates
	name = strings.TrimSpace(name)
	if name == "" {
		return out, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	lookup := func(slot int, sheet string) {
		if strings.TrimSpace(sheet) == "" {
			return
		}
		g.Go(func() error {
			v, _, err := s.records.FindFieldValue(ctx, sheet, name, score.SumHeader)
			if core.IsNotFound(err) {
				// renamed or deleted since the label was written
				s.records.logger.Warn("reference sheet not found", err, map[string]interface{}{"sheet": sheet})
				return nil
			}
			if err != nil {
				return err
			}
			out[slot] = normalizeAggregate(v)
			return nil
		})
	}
	for i, ref := range refs {
		lookup(len(refs)-1-i, ref)
	}
	lookup(len(out)-1, current)
	if err := g.Wait(); err != nil {
		return Aggregates{}, err
	}
	return out, nil
}

func normalizeAggregate(v string) string {
	if strings.TrimSpace(v) == brokenRef {
		return "0"
	}
	return v
}
