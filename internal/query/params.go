package query

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard-api/internal/model"
)

// ErrInvalidParams is wrapped by every normalisation failure.
var ErrInvalidParams = errors.New("invalid list parameters")

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type SortField string

const (
	SortByPriority SortField = "priority"
	SortByDueDate  SortField = "due_date"
)

// Direction is encoded as +1 (ascending) or -1 (descending).
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Filter holds caller-supplied filters. The text fragments are OR-ed with
// each other; Priority (0 = any) is AND-ed with the rest.
type Filter struct {
	Title       string
	Description string
	Status      string
	Priority    model.Priority
}

func (f Filter) hasText() bool {
	return f.Title != "" || f.Description != "" || f.Status != ""
}

type Sort struct {
	Field     SortField
	Direction Direction
}

// Params is a complete task list request. Scope is always conjoined with the
// filters and can never be widened by them.
type Params struct {
	Scope  Scope
	Filter Filter
	Sort   Sort
	Page   int
	Limit  int
}

// Normalize applies defaults and rejects values outside the accepted ranges.
func (p Params) Normalize() (Params, error) {
	p.Filter.Title = strings.TrimSpace(p.Filter.Title)
	p.Filter.Description = strings.TrimSpace(p.Filter.Description)
	p.Filter.Status = strings.TrimSpace(p.Filter.Status)

	if p.Filter.Priority != 0 && !p.Filter.Priority.IsValid() {
		return Params{}, fmt.Errorf("%w: priority must be between 1 and 4", ErrInvalidParams)
	}

	if p.Sort.Field == "" {
		p.Sort.Field = SortByPriority
	}
	if p.Sort.Field != SortByPriority && p.Sort.Field != SortByDueDate {
		return Params{}, fmt.Errorf("%w: sort_by must be priority or due_date", ErrInvalidParams)
	}
	if p.Sort.Direction == 0 {
		p.Sort.Direction = Descending
	}
	if p.Sort.Direction != Ascending && p.Sort.Direction != Descending {
		return Params{}, fmt.Errorf("%w: sort_order must be 1 or -1", ErrInvalidParams)
	}

	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Page < 1 {
		return Params{}, fmt.Errorf("%w: page must be at least 1", ErrInvalidParams)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return Params{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParams, MaxLimit)
	}
	if !OffsetFits(p.Page, p.Limit) {
		return Params{}, fmt.Errorf("%w: page is too large", ErrInvalidParams)
	}
	return p, nil
}

// OffsetFits reports whether (page-1)*limit can be computed without
// overflowing. Both arguments must already be at least 1.
func OffsetFits(page, limit int) bool {
	return page-1 <= math.MaxInt/limit
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Match evaluates the combined predicate against a single task.
func (p Params) Match(t model.Task) bool {
	if !p.Scope.Allows(t) {
		return false
	}
	if p.Filter.hasText() {
		if !containsFold(t.Title, p.Filter.Title) &&
			!containsFold(t.Description, p.Filter.Description) &&
			!containsFold(string(t.Status), p.Filter.Status) {
			return false
		}
	}
	if p.Filter.Priority != 0 && t.Priority != p.Filter.Priority {
		return false
	}
	return true
}

// Less orders a before b under the requested sort. Ties are left to the
// caller's stable ordering.
func (p Params) Less(a, b model.Task) bool {
	var c int
	switch p.Sort.Field {
	case SortByDueDate:
		c = compareTime(a.DueDate, b.DueDate)
	default:
		c = int(a.Priority) - int(b.Priority)
	}
	if p.Sort.Direction == Descending {
		c = -c
	}
	return c < 0
}

func containsFold(s, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(fragment))
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
