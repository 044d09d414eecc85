package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

type (
	LoginRequest struct {
		AccessToken string `json:"access_token" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}

	SheetsResponse struct {
		Sheets    []string `json:"sheets"`
		Templates []string `json:"templates"`
	}

	CreateSheetRequest struct {
		Template string       `json:"template"`
		Title    string       `json:"title" validate:"required,sheettitle"`
		Labels   sheet.Labels `json:"labels"`
	}

	RenameSheetRequest struct {
		Title string `json:"title" validate:"required,sheettitle"`
	}

	LabelsRequest struct {
		Labels sheet.Labels `json:"labels"`
	}

	// RecordRequest is a student row as entered in the score form.
	RecordRequest struct {
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

	// SheetView is everything the score desk shows for one sheet.
	SheetView struct {
		*sheet.Snapshot
		Labels sheet.Labels `json:"labels"`
		Stats  score.Stats  `json:"stats"`
	}

	// MutationResponse reports the outcome of a write together with the sheet as re-read after it.
	MutationResponse struct {
		core.Result
		Row   int        `json:"row,omitempty"`
		Sheet *SheetView `json:"sheet,omitempty"`
	}

	TrendResponse struct {
		Name       string           `json:"name"`
		Labels     sheet.Labels     `json:"labels"`
		Aggregates sheet.Aggregates `json:"aggregates"`
		Trend      [4]float64       `json:"trend"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.AccessToken = core.CleanString(lr.AccessToken)
	return validate.Struct(lr)
}

func (cr *CreateSheetRequest) Validate(validate *validator.Validate) error {
	cr.Title = core.CleanString(cr.Title)
	cr.Template = core.CleanString(cr.Template)
	for i := range cr.Labels {
		cr.Labels[i] = core.CleanString(cr.Labels[i])
	}
	return validate.Struct(cr)
}

func (rr *RenameSheetRequest) Validate(validate *validator.Validate) error {
	rr.Title = core.CleanString(rr.Title)
	return validate.Struct(rr)
}

func (lr *LabelsRequest) Validate() {
	for i := range lr.Labels {
		lr.Labels[i] = core.CleanString(lr.Labels[i])
	}
}

// Validate cleans the identity fields, infers the department when the form left it out and checks
// every score against its department's limit. Scores that can only be kept under a department need one.
func (rr *RecordRequest) Validate(validate *validator.Validate) error {
	rr.Name = core.CleanString(rr.Name)
	rr.Grade = core.CleanString(rr.Grade)
	if err := validate.Struct(rr); err != nil {
		return err
	}
	if rr.DeptType == "" {
		keys := make([]string, 0, len(rr.Scores))
		for k := range rr.Scores {
			keys = append(keys, k)
		}
		rr.DeptType = score.InferDept(rr.Grade, keys)
		if rr.DeptType == "" && len(rr.Scores) > 0 && len(score.FilterForSubmit("", rr.Scores)) == 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "dept_type", Error: "select a department"})
		}
	} else if d, ok := score.ParseDepartment(string(rr.DeptType)); ok {
		rr.DeptType = d
	} else {
		return core.NewValidationError(nil, core.FieldError{Field: "dept_type", Error: "unknown department " + strings.TrimSpace(string(rr.DeptType))})
	}
	return score.ValidateScores(rr.DeptType, rr.Scores)
}

// Record returns the row to write: only the department's own fields are submitted, so the
// spreadsheet's formula columns are never overwritten.
func (rr *RecordRequest) Record() sheet.Record {
	return sheet.Record{
		Name:     rr.Name,
		School:   strings.TrimSpace(rr.School),
		Grade:    rr.Grade,
		Date:     strings.TrimSpace(rr.Date),
		Dept:     strings.TrimSpace(rr.Dept),
		Type:     strings.TrimSpace(rr.Type),
		Ref:      strings.TrimSpace(rr.Ref),
		DeptType: rr.DeptType,
		Scores:   score.FilterForSubmit(rr.DeptType, rr.Scores),
	}
}
