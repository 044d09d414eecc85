package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
)

// DefaultTemplatePrefix marks blueprint sheets that are only ever duplicated.
const DefaultTemplatePrefix = "Template_"

var (
	ErrNoTemplates      = core.NewNotFoundError("no template sheets are available (a Template_ sheet is required)")
	ErrTemplateNotFound = core.NewNotFoundError("template sheet not found")
)

// ErrSheetNotFound reports a title that resolves to no sheet, suggesting the closest existing title.
func ErrSheetNotFound(title string, titles []string) error {
	msg := fmt.Sprintf("sheet %q not found", title)
	if s := core.ClosestMatch(title, titles); s != "" {
		msg += fmt.Sprintf(", did you mean %q?", s)
	}
	return core.NewNotFoundError(msg)
}

// LifecycleManager creates, renames and deletes the exam sheets of one spreadsheet.
type LifecycleManager struct {
	backend       Backend
	spreadsheetID string
	prefix        string
	labels        *LabelStore
	logger        core.Logger
}

func NewLifecycleManager(backend Backend, spreadsheetID, templatePrefix string, labels *LabelStore, logger core.Logger) *LifecycleManager {
	if templatePrefix == "" {
		templatePrefix = DefaultTemplatePrefix
	}
	return &LifecycleManager{
		backend:       backend,
		spreadsheetID: spreadsheetID,
		prefix:        templatePrefix,
		labels:        labels,
		logger:        logger,
	}
}

// IsTemplate reports whether title names a template sheet.
func (m *LifecycleManager) IsTemplate(title string) bool {
	return strings.HasPrefix(title, m.prefix)
}

// ListTemplates returns the template titles in tab order.
func (m *LifecycleManager) ListTemplates(ctx context.Context) ([]string, error) {
	return m.titles(ctx, true)
}

// ListActiveSheets returns the non-template titles in tab order.
func (m *LifecycleManager) ListActiveSheets(ctx context.Context) ([]string, error) {
	return m.titles(ctx, false)
}

// Duplicate copies template into a new first tab named title, preserving formulas and formatting.
func (m *LifecycleManager) Duplicate(ctx context.Context, template, title string) (SheetInfo, error) {
	title = strings.TrimSpace(title)
	sheets, err := m.sheets(ctx)
	if err != nil {
		return SheetInfo{}, err
	}
	src, ok := find(sheets, template)
	if !ok {
		return SheetInfo{}, errors.Wrap(ErrTemplateNotFound, template)
	}
	if err := m.checkTitle(sheets, title); err != nil {
		return SheetInfo{}, err
	}
	info, err := m.backend.DuplicateSheet(ctx, m.spreadsheetID, src.ID, title)
	if err != nil {
		m.logger.Error("duplicating sheet", err, map[string]interface{}{"template": template, "title": title})
		return SheetInfo{}, errors.Wrapf(err, "duplicating %s", template)
	}
	m.logger.Info(fmt.Sprintf("created sheet %q from %q", title, template))
	return info, nil
}

// CreateFromTemplate duplicates preferred when it is a template, or else the first template,
// then seeds the reference labels of the new sheet.
// A sheet without a label column is still created; the returned error is then ErrLabelColumnNotFound.
func (m *LifecycleManager) CreateFromTemplate(ctx context.Context, preferred, title string, labels Labels) (SheetInfo, error) {
	templates, err := m.ListTemplates(ctx)
	if err != nil {
		return SheetInfo{}, err
	}
	if len(templates) == 0 {
		return SheetInfo{}, ErrNoTemplates
	}
	source := templates[0]
	for _, t := range templates {
		if t == preferred {
			source = t
			break
		}
	}
	info, err := m.Duplicate(ctx, source, title)
	if err != nil {
		return SheetInfo{}, err
	}
	if m.labels != nil {
		if err := m.labels.WriteLabels(ctx, info.Title, labels); err != nil {
			return info, err
		}
	}
	return info, nil
}

// Rename changes the title of a sheet; its content is untouched.
func (m *LifecycleManager) Rename(ctx context.Context, oldTitle, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	sheets, err := m.sheets(ctx)
	if err != nil {
		return err
	}
	info, ok := find(sheets, oldTitle)
	if !ok {
		return ErrSheetNotFound(oldTitle, titlesOf(sheets))
	}
	if oldTitle == newTitle {
		return nil
	}
	if err := m.checkTitle(sheets, newTitle); err != nil {
		return err
	}
	if err := m.backend.RenameSheet(ctx, m.spreadsheetID, info.ID, newTitle); err != nil {
		m.logger.Error("renaming sheet", err, map[string]interface{}{"from": oldTitle, "to": newTitle})
		return errors.Wrapf(err, "renaming %s", oldTitle)
	}
	return nil
}

// Delete irreversibly removes a sheet and all its data.
func (m *LifecycleManager) Delete(ctx context.Context, title string) error {
	sheets, err := m.sheets(ctx)
	if err != nil {
		return err
	}
	info, ok := find(sheets, title)
	if !ok {
		return ErrSheetNotFound(title, titlesOf(sheets))
	}
	if err := m.backend.DeleteSheet(ctx, m.spreadsheetID, info.ID); err != nil {
		m.logger.Error("deleting sheet", err, map[string]interface{}{"title": title})
		return errors.Wrapf(err, "deleting %s", title)
	}
	m.logger.Info(fmt.Sprintf("deleted sheet %q", title))
	return nil
}

// Resolve returns the sheet titled title.
func (m *LifecycleManager) Resolve(ctx context.Context, title string) (SheetInfo, error) {
	sheets, err := m.sheets(ctx)
	if err != nil {
		return SheetInfo{}, err
	}
	info, ok := find(sheets, title)
	if !ok {
		return SheetInfo{}, ErrSheetNotFound(title, titlesOf(sheets))
	}
	return info, nil
}

func (m *LifecycleManager) checkTitle(sheets []SheetInfo, title string) error {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return core.NewValidationError(errors.New("a sheet title is required"), core.FieldError{Field: "title", Error: "this field is required"})
	case strings.ContainsAny(title, "'!"):
		return core.NewValidationError(errors.New("invalid sheet title"), core.FieldError{Field: "title", Error: "sheet titles cannot contain quotes or '!'"})
	}
	if _, exists := find(sheets, title); exists {
		msg := fmt.Sprintf("a sheet named %q already exists", title)
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: "title", Error: msg})
	}
	return nil
}

func (m *LifecycleManager) titles(ctx context.Context, templates bool) ([]string, error) {
	sheets, err := m.sheets(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(sheets))
	for _, s := range sheets {
		if m.IsTemplate(s.Title) == templates {
			titles = append(titles, s.Title)
		}
	}
	return titles, nil
}

func (m *LifecycleManager) sheets(ctx context.Context) ([]SheetInfo, error) {
	sheets, err := m.backend.Sheets(ctx, m.spreadsheetID)
	if err != nil {
		m.logger.Error("listing sheets", err)
		return nil, errors.Wrap(err, "listing sheets")
	}
	return sheets, nil
}

func find(sheets []SheetInfo, title string) (SheetInfo, bool) {
	for _, s := range sheets {
		if s.Title == title {
			return s, true
		}
	}
	return SheetInfo{}, false
}

func titlesOf(sheets []SheetInfo) []string {
	titles := make([]string, len(sheets))
	for i, s := range sheets {
		titles[i] = s.Title
	}
	return titles
}
