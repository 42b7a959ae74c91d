package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("empty params match all", func(t *testing.T) {
		c, err := Build("u1", Params{})
		require.NoError(t, err)
		assert.Equal(t, Criteria{UserID: "u1", Page: 1}, c)
	})
	t.Run("page defaults", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
			c, err := Build("u1", Params{Page: raw})
			require.NoError(t, err)
			assert.Equal(t, 1, c.Page, "page %q", raw)
		}
		c, err := Build("u1", Params{Page: "3"})
		require.NoError(t, err)
		assert.Equal(t, 3, c.Page)
		assert.Equal(t, 20, c.Offset())
		assert.Equal(t, PageSize, c.Limit())
	})
	t.Run("huge page is capped", func(t *testing.T) {
		for _, raw := range []string{"1000000000000000000", "99999999999999999999999"} {
			c, err := Build("u1", Params{Page: raw})
			require.NoError(t, err)
			assert.Equal(t, MaxPage, c.Page, "page %q", raw)
			assert.Positive(t, c.Offset(), "page %q", raw)
		}
		c, err := Build("u1", Params{Page: "-99999999999999999999999"})
		require.NoError(t, err)
		assert.Equal(t, 1, c.Page)
	})
	t.Run("date-only end covers the day", func(t *testing.T) {
		c, err := Build("u1", Params{StartDate: "2024-01-01", EndDate: "2024-01-31"})
		require.NoError(t, err)
		require.NotNil(t, c.StartDate)
		require.NotNil(t, c.EndDate)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *c.StartDate)
		assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *c.EndDate)
	})
	t.Run("rfc3339 end is exact", func(t *testing.T) {
		c, err := Build("u1", Params{EndDate: "2024-01-31T10:00:00+02:00"})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), *c.EndDate)
	})
	t.Run("amount bounds", func(t *testing.T) {
		c, err := Build("u1", Params{MinAmount: "20", MaxAmount: " 100 "})
		require.NoError(t, err)
		assert.Equal(t, 20.0, *c.MinAmount)
		assert.Equal(t, 100.0, *c.MaxAmount)
	})

	bad := []struct {
		name   string
		params Params
		field  string
	}{
		{"start date", Params{StartDate: "yesterday"}, "startDate"},
		{"end date", Params{EndDate: "2024-13-01"}, "endDate"},
		{"min amount", Params{MinAmount: "ten"}, "minAmount"},
		{"max amount", Params{MaxAmount: "NaN"}, "maxAmount"},
	}
	for _, tt := range bad {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			_, err := Build("u1", tt.params)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(10))
	assert.Equal(t, 2, TotalPages(11))
	assert.Equal(t, 3, TotalPages(25))
}

func txn(id, user, title, category string, amount float64, day int) model.Transaction {
	return model.Transaction{
		ID:       id,
		UserID:   user,
		Title:    title,
		Category: category,
		Amount:   amount,
		Date:     time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestCriteriaMatch(t *testing.T) {
	coffee := txn("1", "u1", "Morning Coffee", "food", 4.5, 10)
	lo, hi := 20.0, 100.0
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"owner only", Criteria{UserID: "u1"}, true},
		{"other owner", Criteria{UserID: "u2"}, false},
		{"search is case-insensitive", Criteria{UserID: "u1", Search: "coFFee"}, true},
		{"search miss", Criteria{UserID: "u1", Search: "tea"}, false},
		{"category exact", Criteria{UserID: "u1", Category: "food"}, true},
		{"category is not substring", Criteria{UserID: "u1", Category: "foo"}, false},
		{"inclusive date bounds", Criteria{UserID: "u1", StartDate: &start, EndDate: &end}, true},
		{"amount below min", Criteria{UserID: "u1", MinAmount: &lo}, false},
		{"amount under max", Criteria{UserID: "u1", MaxAmount: &hi}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Match(coffee))
		})
	}
}

func TestPageAmountRange(t *testing.T) {
	ts := []model.Transaction{
		txn("1", "u1", "a", "x", 10, 1),
		txn("2", "u1", "b", "x", 50, 2),
		txn("3", "u1", "c", "x", 100, 3),
	}
	c, err := Build("u1", Params{MinAmount: "20", MaxAmount: "100"})
	require.NoError(t, err)

	page := Page(ts, c)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, 100.0, page.Transactions[0].Amount)
	assert.Equal(t, 50.0, page.Transactions[1].Amount)
	assert.EqualValues(t, 2, page.TotalResults)
}

func TestPagePagination(t *testing.T) {
	var ts []model.Transaction
	for i := 1; i <= 25; i++ {
		ts = append(ts, txn(fmt.Sprintf("%02d", i), "u1", "t", "x", float64(i), i))
	}
	ts = append(ts, txn("99", "u2", "t", "x", 1, 1))

	c, _ := Build("u1", Params{Page: "3"})
	page := Page(ts, c)
	assert.Len(t, page.Transactions, 5)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 25, page.TotalResults)
	// most recent first: page 3 holds days 5..1
	assert.Equal(t, 5.0, page.Transactions[0].Amount)

	c, _ = Build("u1", Params{Page: "9"})
	page = Page(ts, c)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, 3, page.TotalPages)

	c, _ = Build("u1", Params{Page: "1000000000000000000"})
	page = Page(ts, c)
	assert.Empty(t, page.Transactions)
	assert.EqualValues(t, 25, page.TotalResults)

	page = Page(ts, Criteria{UserID: "u1", Page: -5})
	assert.Empty(t, page.Transactions)
}

func TestSortTieBreak(t *testing.T) {
	ts := []model.Transaction{
		txn("b", "u1", "", "", 0, 5),
		txn("a", "u1", "", "", 0, 5),
		txn("c", "u1", "", "", 0, 6),
	}
	Sort(ts)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ts[0].ID, ts[1].ID, ts[2].ID})
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Transaction{
		txn("1", "u1", "", "", 10, 1),
		txn("2", "u1", "", "", 20, 1),
		txn("3", "u1", "", "", -5, 1),
	})
	assert.Equal(t, 25.0, s.TotalAmount)
	assert.EqualValues(t, 3, s.TotalTransactions)

	assert.Equal(t, model.Summary{}, Summarize(nil))
}

func TestBreakdown(t *testing.T) {
	got := Breakdown([]model.Transaction{
		txn("1", "u1", "", "food", 30, 1),
		txn("2", "u1", "", "travel", 5, 1),
		txn("3", "u1", "", "food", 10, 1),
	})
	assert.Equal(t, []model.CategoryTotal{
		{Category: "food", Total: 40},
		{Category: "travel", Total: 5},
	}, got)

	assert.Empty(t, Breakdown(nil))
}
