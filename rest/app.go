package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/logger"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	Router       *mux.Router
	Store        contract.Store
	Users        contract.UserRepo
	Transactions contract.TransactionRepo
	Tokens       *TokenIssuer

	Validator  *validator.Validate
	Translator ut.Translator
	Logger     *logger.Logger

	// ClientURL is the allowed CORS origin.
	ClientURL string
	// Frontend, when set, serves every GET or HEAD that no API route matched.
	Frontend http.Handler
}

func (a *App) Init(store contract.Store, tokens *TokenIssuer, log *logger.Logger) error {
	a.Store = store
	a.Users = store.Users()
	a.Transactions = store.Transactions()
	a.Tokens = tokens
	a.Logger = log.WithComponent(logger.ComponentHTTP)
	if a.ClientURL == "" {
		a.ClientURL = "*"
	}

	var err error
	if a.Validator, a.Translator, err = NewValidator(); err != nil {
		return err
	}

	a.Router = mux.NewRouter()
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router.NotFoundHandler = http.HandlerFunc(a.fallback)
	a.Router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	a.Router.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	a.Router.HandleFunc("/api/auth/register", a.register).Methods(http.MethodPost)
	a.Router.HandleFunc("/api/auth/login", a.login).Methods(http.MethodPost)

	// Auth routes
	a.Router.Handle("/api/transactions", a.JwtVerify(http.HandlerFunc(a.createTransaction))).Methods(http.MethodPost)
	a.Router.Handle("/api/transactions", a.JwtVerify(http.HandlerFunc(a.getTransactions))).Methods(http.MethodGet)
	a.Router.Handle("/api/transactions/summary", a.JwtVerify(http.HandlerFunc(a.getSummary))).Methods(http.MethodGet)
	a.Router.Handle("/api/transactions/category-breakdown", a.JwtVerify(http.HandlerFunc(a.getCategoryBreakdown))).Methods(http.MethodGet)
	a.Router.Handle("/api/transactions/{id}", a.JwtVerify(http.HandlerFunc(a.getTransaction))).Methods(http.MethodGet)
	a.Router.Handle("/api/transactions/{id}", a.JwtVerify(http.HandlerFunc(a.updateTransaction))).Methods(http.MethodPut)
	a.Router.Handle("/api/transactions/{id}", a.JwtVerify(http.HandlerFunc(a.deleteTransaction))).Methods(http.MethodDelete)
}

// fallback answers unmatched requests: the client for page loads, JSON 404
// for everything under /api.
func (a *App) fallback(w http.ResponseWriter, r *http.Request) {
	page := r.Method == http.MethodGet || r.Method == http.MethodHead
	api := r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
	if a.Frontend == nil || !page || api {
		notFound(w, r)
		return
	}
	a.Frontend.ServeHTTP(w, r)
}

// Handler wraps the router with request logging, panic recovery and CORS.
func (a *App) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{a.ClientURL}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return logger.Middleware(a.Logger)(recoverer(cors(a.Router)))
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down HTTP server", logger.FieldOperation, logger.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		a.Logger.WarnContext(r.Context(), "store ping failed", logger.FieldError, err)
		respondWithError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, "ok", nil)
}
