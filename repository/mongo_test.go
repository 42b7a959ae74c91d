package repository

import (
	"testing"
	"time"

	"github.com/hpmalinova/Expense-Tracker/query"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTransactionFilter(t *testing.T) {
	t.Run("owner only", func(t *testing.T) {
		got := transactionFilter(query.Criteria{UserID: "u1", Page: 1})
		assert.Equal(t, bson.D{{Key: "user", Value: "u1"}}, got)
	})

	t.Run("all filters", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		lo, hi := 20.0, 100.0
		got := transactionFilter(query.Criteria{
			UserID:    "u1",
			Search:    "a.b",
			Category:  "food",
			StartDate: &start,
			MinAmount: &lo,
			MaxAmount: &hi,
		})

		want := bson.D{
			{Key: "user", Value: "u1"},
			{Key: "title", Value: bson.D{{Key: "$regex", Value: `a\.b`}, {Key: "$options", Value: "i"}}},
			{Key: "category", Value: "food"},
			{Key: "date", Value: bson.D{{Key: "$gte", Value: start}}},
			{Key: "amount", Value: bson.D{{Key: "$gte", Value: 20.0}, {Key: "$lte", Value: 100.0}}},
		}
		assert.Equal(t, want, got)
	})
}

func TestBreakdownPipelineSortsDescending(t *testing.T) {
	p := breakdownPipeline("u1")
	assert.Len(t, p, 3)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, "$group", p[1][0].Key)
	assert.Equal(t, bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}, p[2][0].Value)
}

func TestSummaryPipelineScopesToOwner(t *testing.T) {
	p := summaryPipeline("u1")
	assert.Equal(t, bson.D{{Key: "user", Value: "u1"}}, p[0][0].Value)
}
