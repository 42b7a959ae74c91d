// Package query turns the optional filter parameters of the transaction list
// endpoint into owner-scoped Criteria, and holds the in-process versions of the
// filtering, ordering and aggregation rules that every store must agree on.
package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PageSize is the fixed number of transactions per page.
const PageSize = 10

// MaxPage is the largest page whose offset still fits in an int.
const MaxPage = math.MaxInt/PageSize + 1

// Params are the raw query-string values of a list request. Empty means absent.
type Params struct {
	Search    string
	Category  string
	StartDate string
	EndDate   string
	MinAmount string
	MaxAmount string
	Page      string
}

// Criteria is the AND-ed predicate over a single user's transactions plus the
// requested page. Nil bounds and empty strings impose no constraint.
type Criteria struct {
	UserID    string
	Search    string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *float64
	MaxAmount *float64
	Page      int
}

// FieldError reports a parameter that is present but cannot be parsed.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Build validates p and returns the criteria scoped to userID.
func Build(userID string, p Params) (Criteria, error) {
	c := Criteria{
		UserID:   userID,
		Search:   strings.TrimSpace(p.Search),
		Category: strings.TrimSpace(p.Category),
		Page:     parsePage(p.Page),
	}

	if v := strings.TrimSpace(p.StartDate); v != "" {
		start, _, err := ParseDate(v)
		if err != nil {
			return Criteria{}, &FieldError{Field: "startDate", Message: "must be a date (YYYY-MM-DD or RFC3339)"}
		}
		c.StartDate = &start
	}
	if v := strings.TrimSpace(p.EndDate); v != "" {
		end, dateOnly, err := ParseDate(v)
		if err != nil {
			return Criteria{}, &FieldError{Field: "endDate", Message: "must be a date (YYYY-MM-DD or RFC3339)"}
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		c.EndDate = &end
	}

	var err error
	if c.MinAmount, err = parseAmount("minAmount", p.MinAmount); err != nil {
		return Criteria{}, err
	}
	if c.MaxAmount, err = parseAmount("maxAmount", p.MaxAmount); err != nil {
		return Criteria{}, err
	}

	return c, nil
}

// Offset is the number of matching records skipped before the requested page.
func (c Criteria) Offset() int {
	return (c.Page - 1) * PageSize
}

// Limit is the maximum number of records on a page.
func (c Criteria) Limit() int {
	return PageSize
}

// TotalPages is ceil(total / PageSize).
func TotalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

// ParseDate accepts RFC3339 timestamps and YYYY-MM-DD dates. dateOnly reports
// whether the second layout matched. The result is always in UTC.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}

func parsePage(s string) int {
	s = strings.TrimSpace(s)
	page, err := strconv.Atoi(s)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-"):
		return MaxPage
	case err != nil || page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

func parseAmount(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &FieldError{Field: field, Message: "must be a number"}
	}
	return &v, nil
}
