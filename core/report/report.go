// Package report produces the commentary printed on a student's report card.
package report

import (
	"context"

	"github.com/impact7/scoredesk/core/score"
)

// Request is what a commentary generator is given.
type Request struct {
	Department score.Department  `json:"department"`
	Student    string            `json:"student"`
	Scores     map[string]string `json:"scores"`
}

// Commentary is the generated report text.
type Commentary struct {
	Commentary string `json:"commentary"`
	Footer     string `json:"footer"`
}

// Generator writes commentary for one student.
type Generator interface {
	Generate(ctx context.Context, req Request) (Commentary, error)
}

// Fallback tries Primary and falls back to Secondary on any failure other than cancellation.
// A nil Primary means no remote generator is configured.
type Fallback struct {
	Primary   Generator
	Secondary Generator
}

func (f Fallback) Generate(ctx context.Context, req Request) (Commentary, error) {
	if f.Primary != nil {
		c, err := f.Primary.Generate(ctx, req)
		if err == nil {
			return c, nil
		}
		if ctx.Err() != nil {
			return Commentary{}, ctx.Err()
		}
	}
	return f.Secondary.Generate(ctx, req)
}
