package portal

import (
	"fmt"
	"math"
	"time"
)

// Pagination defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset within a Postgres int4 OFFSET
	MaxPage = math.MaxInt32 / MaxPageSize
)

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int
	PageSize int
}

// ApplyDefaults fills in default values for unset fields
func (p *PageRequest) ApplyDefaults() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
}

// Validate checks the page request after defaults were applied.
func (p *PageRequest) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be at least 1")
	}
	if p.Page > MaxPage {
		return fmt.Errorf("page cannot exceed %d (requested: %d)", MaxPage, p.Page)
	}
	if p.PageSize < 1 {
		return fmt.Errorf("page size must be at least 1")
	}
	if p.PageSize > MaxPageSize {
		return fmt.Errorf("page size cannot exceed %d (requested: %d)", MaxPageSize, p.PageSize)
	}
	return nil
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of an ordered result set.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// NewPage builds a Page with HasMore derived from the total.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasMore:  req.Offset()+len(items) < total,
	}
}

// DateRange bounds created_at by calendar date. Both ends are inclusive
// and each is optional.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool {
	return d.Start == nil && d.End == nil
}

// Contains reports whether t falls on or between the bound dates.
func (d DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if d.Start != nil && day.Before(truncateDay(*d.Start)) {
		return false
	}
	if d.End != nil && day.After(truncateDay(*d.End)) {
		return false
	}
	return true
}

// Validate rejects a range whose start falls after its end.
func (d DateRange) Validate() error {
	if d.Start != nil && d.End != nil && truncateDay(*d.Start).After(truncateDay(*d.End)) {
		return fmt.Errorf("start date must not be after end date")
	}
	return nil
}

// EndExclusive is the first instant after the end date, for SQL bounds.
func (d DateRange) EndExclusive() *time.Time {
	if d.End == nil {
		return nil
	}
	next := truncateDay(*d.End).AddDate(0, 0, 1)
	return &next
}

// StartInclusive is midnight of the start date.
func (d DateRange) StartInclusive() *time.Time {
	if d.Start == nil {
		return nil
	}
	day := truncateDay(*d.Start)
	return &day
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	OwnerID *string // nil = all owners (admin view)
	Search  string  // case-insensitive match on file name, and owner name/company when OwnerID is nil
	Range   DateRange
}

// ClientFilter narrows the client directory.
type ClientFilter struct {
	Search string // name, email, company or tax id
}
