package rest

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/logger"
	"github.com/hpmalinova/Expense-Tracker/model"
)

const invalidCredentials = "Invalid credentials"

// dummyHash is compared against when the email is unknown so that both login
// failures cost one bcrypt verification.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	req := &model.UserRegister{}
	if !decodeJSON(w, r, req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)

	if !a.validate(w, req) {
		return
	}

	// Hash the password with bcrypt
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.internalError(w, r, "hash password", err)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		a.internalError(w, r, "generate user id", err)
		return
	}

	user, err := a.Users.Create(r.Context(), &model.User{
		ID:           id.String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, contract.ErrUserExists) {
			respondWithError(w, http.StatusBadRequest, "User already exists")
			return
		}
		a.internalError(w, r, "create user", err)
		return
	}

	identity, err := a.identity(user)
	if err != nil {
		a.internalError(w, r, "issue token", err)
		return
	}

	logger.FromContext(r.Context()).WithComponent(logger.ComponentAuth).InfoContext(r.Context(), "user registered",
		logger.NewFields().WithOperation(logger.OpRegister).WithUserID(user.ID).Args()...)
	respondWithJSON(w, http.StatusCreated, "User registered successfully", identity)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	req := &model.UserLogin{}
	if !decodeJSON(w, r, req) {
		return
	}
	req.Email = NormalizeEmail(req.Email)

	if !a.validate(w, req) {
		return
	}

	user, err := a.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, contract.ErrNotFound) {
			a.internalError(w, r, "find user by email", err)
			return
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		respondWithError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	identity, err := a.identity(user)
	if err != nil {
		a.internalError(w, r, "issue token", err)
		return
	}

	logger.FromContext(r.Context()).WithComponent(logger.ComponentAuth).InfoContext(r.Context(), "user logged in",
		logger.NewFields().WithOperation(logger.OpLogin).WithUserID(user.ID).Args()...)
	respondWithJSON(w, http.StatusOK, "Login successful", identity)
}

func (a *App) identity(user *model.User) (*model.Identity, error) {
	token, err := a.Tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &model.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}
