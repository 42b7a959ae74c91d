package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/logger"
)

type contextKey string

const userKey contextKey = "user"

// JwtVerify accepts "Authorization: Bearer <token>" and puts the caller's ID
// in the request context. The user must still exist.
func (a *App) JwtVerify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondWithError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		userID, err := a.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.FromContext(r.Context()).WithComponent(logger.ComponentAuth).
				Debug("rejected bearer token", logger.FieldError, err)
			respondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		if _, err := a.Users.FindByID(r.Context(), userID); err != nil {
			if !errors.Is(err, contract.ErrNotFound) {
				a.internalError(w, r, "load token owner", err)
				return
			}
			respondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, userID)
		ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(logger.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID is set by JwtVerify on every authenticated route.
func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}
