package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/logger"
	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/query"
)

const transactionNotFound = "Transaction not found"

// now is the store clock. Millisecond precision matches every backend.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (a *App) createTransaction(w http.ResponseWriter, r *http.Request) {
	req := &model.TransactionCreate{}
	if !decodeJSON(w, r, req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.Notes = strings.TrimSpace(req.Notes)

	if !a.validate(w, req) {
		return
	}

	date, _, err := query.ParseDate(req.Date)
	if err != nil {
		respondWithValidationError("date "+err.Error(), map[string]string{"date": err.Error()}, w)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		a.internalError(w, r, "generate transaction id", err)
		return
	}

	created := now()
	t, err := a.Transactions.Create(r.Context(), &model.Transaction{
		ID:        id.String(),
		UserID:    callerID(r),
		Title:     req.Title,
		Amount:    model.RoundAmount(*req.Amount),
		Category:  req.Category,
		Date:      date.Truncate(time.Millisecond),
		Notes:     req.Notes,
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		a.internalError(w, r, "create transaction", err)
		return
	}

	logger.FromContext(r.Context()).WithComponent(logger.ComponentLedger).DebugContext(r.Context(), "transaction created",
		logger.NewFields().WithOperation(logger.OpCreate).Args()...)
	respondWithJSON(w, http.StatusCreated, "Transaction created", t)
}

func (a *App) getTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := query.Build(callerID(r), query.Params{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		MinAmount: q.Get("minAmount"),
		MaxAmount: q.Get("maxAmount"),
		Page:      q.Get("page"),
	})
	if err != nil {
		if !respondWithQueryError(w, err) {
			a.internalError(w, r, "build transaction query", err)
		}
		return
	}

	page, err := a.Transactions.Find(r.Context(), c)
	if err != nil {
		a.internalError(w, r, "list transactions", err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Transactions fetched", page)
}

func (a *App) getTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := a.Transactions.FindByID(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		a.respondWithStoreError(w, r, "get transaction", err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Transaction fetched", t)
}

// updateTransaction overwrites only the fields present in the body.
func (a *App) updateTransaction(w http.ResponseWriter, r *http.Request) {
	patch := &model.TransactionPatch{}
	if !decodeJSON(w, r, patch) {
		return
	}
	trimPtr(patch.Title)
	trimPtr(patch.Category)
	trimPtr(patch.Notes)

	if !a.validate(w, patch) {
		return
	}

	var date time.Time
	if patch.Date != nil {
		parsed, _, err := query.ParseDate(*patch.Date)
		if err != nil {
			respondWithValidationError("date "+err.Error(), map[string]string{"date": err.Error()}, w)
			return
		}
		date = parsed.Truncate(time.Millisecond)
	}

	t, err := a.Transactions.FindByID(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		a.respondWithStoreError(w, r, "get transaction", err)
		return
	}

	patch.Apply(t, date)
	t.UpdatedAt = now()

	updated, err := a.Transactions.Update(r.Context(), t)
	if err != nil {
		a.respondWithStoreError(w, r, "update transaction", err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Transaction updated", updated)
}

func (a *App) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := a.Transactions.Delete(r.Context(), callerID(r), mux.Vars(r)["id"]); err != nil {
		a.respondWithStoreError(w, r, "delete transaction", err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Transaction deleted successfully", nil)
}

func (a *App) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Transactions.Summary(r.Context(), callerID(r))
	if err != nil {
		a.internalError(w, r, "summarize transactions", err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Summary fetched", summary)
}

func (a *App) getCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Transactions.CategoryBreakdown(r.Context(), callerID(r))
	if err != nil {
		a.internalError(w, r, "category breakdown", err)
		return
	}
	if totals == nil {
		totals = []model.CategoryTotal{}
	}

	respondWithJSON(w, http.StatusOK, "Category breakdown fetched", totals)
}

// respondWithStoreError answers 404 for missing and foreign records alike.
func (a *App) respondWithStoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, contract.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, transactionNotFound)
		return
	}
	a.internalError(w, r, msg, err)
}
