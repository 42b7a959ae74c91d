package model

import (
	"math"
	"time"
)

type Transaction struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user"`
	Title     string    `json:"title" bson:"title"`
	Amount    float64   `json:"amount" bson:"amount"`
	Category  string    `json:"category" bson:"category"`
	Date      time.Time `json:"date" bson:"date"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RoundAmount rounds v to cents, the precision the SQL amount columns keep.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// TransactionCreate is the body of POST /api/transactions. Any owner field sent
// by the client is dropped by the decoder since the struct has none.
type TransactionCreate struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Amount   *float64 `json:"amount" validate:"required,gt=-1e13,lt=1e13"`
	Category string   `json:"category" validate:"required,max=100"`
	Date     string   `json:"date" validate:"required,isodate"`
	Notes    string   `json:"notes" validate:"max=1000"`
}

// TransactionPatch is the body of PUT /api/transactions/{id}. A nil field was
// absent from the request and keeps its stored value.
type TransactionPatch struct {
	Title    *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Amount   *float64 `json:"amount" validate:"omitempty,gt=-1e13,lt=1e13"`
	Category *string  `json:"category" validate:"omitempty,min=1,max=100"`
	Date     *string  `json:"date" validate:"omitempty,isodate"`
	Notes    *string  `json:"notes" validate:"omitempty,max=1000"`
}

// Apply copies the present fields of the patch onto t. date must be the parsed
// form of p.Date when that field is present.
func (p *TransactionPatch) Apply(t *Transaction, date time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Amount != nil {
		t.Amount = RoundAmount(*p.Amount)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = date
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	CurrentPage  int           `json:"currentPage"`
	TotalPages   int           `json:"totalPages"`
	TotalResults int64         `json:"totalResults"`
}

type Summary struct {
	TotalAmount       float64 `json:"totalAmount" bson:"totalAmount"`
	TotalTransactions int64   `json:"totalTransactions" bson:"totalTransactions"`
}

type CategoryTotal struct {
	Category string  `json:"category" bson:"_id"`
	Total    float64 `json:"total" bson:"total"`
}
