package sheet

import (
	"strings"
)

// PageSize is the number of records per listing page.
const PageSize = 10

// Status filters records by completion.
type Status string

const (
	StatusAll        Status = "all"
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

// ParseStatus returns the Status named by s; anything unknown is StatusAll.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted
	case StatusIncomplete:
		return StatusIncomplete
	default:
		return StatusAll
	}
}

// Filter selects records by a free-text search and a completion status.
type Filter struct {
	Search string `query:"search" json:"search"`
	Status Status `query:"status" json:"status"`
}

// Match reports whether rec passes the filter. The search is a case-insensitive substring
// match over name, school, grade, dept, type and date.
func (f Filter) Match(rec Record) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		found := false
		for _, v := range []string{rec.Name, rec.School, rec.Grade, rec.Dept, rec.Type, rec.Date} {
			if strings.Contains(strings.ToLower(v), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch f.Status {
	case StatusCompleted:
		return rec.Complete()
	case StatusIncomplete:
		return !rec.Complete()
	}
	return true
}

// Apply returns the records passing the filter, in their original order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Page is one page of a listing.
type Page struct {
	Records    []Record `json:"records"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
}

// Paginate returns page (1-based, clamped to the valid range) of records.
func Paginate(records []Record, page int) Page {
	total := len(records)
	pages := (total + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	return Page{
		Records:    append([]Record{}, records[start:end]...),
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}
}
