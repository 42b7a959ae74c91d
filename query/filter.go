package query

import (
	"sort"
	"strings"

	"github.com/hpmalinova/Expense-Tracker/model"
)

// Match reports whether t satisfies every constraint of c, including ownership.
func (c Criteria) Match(t model.Transaction) bool {
	if t.UserID != c.UserID {
		return false
	}
	if c.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.Search)) {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.StartDate != nil && t.Date.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && t.Date.After(*c.EndDate) {
		return false
	}
	if c.MinAmount != nil && t.Amount < *c.MinAmount {
		return false
	}
	if c.MaxAmount != nil && t.Amount > *c.MaxAmount {
		return false
	}
	return true
}

// Sort orders transactions by date descending, then by ID ascending. IDs are
// time-ordered, so ties keep insertion order.
func Sort(ts []model.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.After(ts[j].Date)
		}
		return ts[i].ID < ts[j].ID
	})
}

// Page applies c to ts and returns the requested page in store order.
func Page(ts []model.Transaction, c Criteria) *model.TransactionPage {
	matched := make([]model.Transaction, 0, len(ts))
	for _, t := range ts {
		if c.Match(t) {
			matched = append(matched, t)
		}
	}
	Sort(matched)

	total := int64(len(matched))
	start := c.Offset()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := start + c.Limit()
	if end > len(matched) {
		end = len(matched)
	}

	return &model.TransactionPage{
		Transactions: matched[start:end],
		CurrentPage:  c.Page,
		TotalPages:   TotalPages(total),
		TotalResults: total,
	}
}

// Summarize sums the amounts of ts. The caller passes one user's records.
func Summarize(ts []model.Transaction) model.Summary {
	var s model.Summary
	for _, t := range ts {
		s.TotalAmount += t.Amount
		s.TotalTransactions++
	}
	return s
}

// Breakdown totals amounts per category, highest total first. Ties are broken
// by category name so the order is deterministic.
func Breakdown(ts []model.Transaction) []model.CategoryTotal {
	totals := make(map[string]float64)
	for _, t := range ts {
		totals[t.Category] += t.Amount
	}

	out := make([]model.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, model.CategoryTotal{Category: category, Total: total})
	}
	SortBreakdown(out)
	return out
}

// SortBreakdown applies the breakdown order to rows produced by a store.
func SortBreakdown(rows []model.CategoryTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Category < rows[j].Category
	})
}
