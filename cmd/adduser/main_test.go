package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/repository"
)

func sqliteArgs(dbPath string, extra ...string) []string {
	return append([]string{"-backend", "sqlite", "-sqlite", dbPath}, extra...)
}

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_success.db")
	stdout := new(bytes.Buffer)

	args := sqliteArgs(dbPath, "-name", "Test User", "-email", "Test@Example.com", "-password", "secret1")
	require.NoError(t, run(args, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "User test@example.com created successfully")

	store, err := repository.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.Users().FindByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	args := sqliteArgs(dbPath, "-name", "Test", "-email", "test@example.com", "-password", "secret1")

	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)), "first run should succeed")

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run([]string{"-password", "secret1"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_interactive.db")
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := sqliteArgs(dbPath, "-name", "Interactive", "-email", "i@example.com")
	require.NoError(t, run(args, stdin, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "created successfully")
}

func TestRun_ShortPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_short.db")

	err := run(sqliteArgs(dbPath, "-name", "Xavier", "-email", "x@example.com", "-password", "123"),
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6")
}

func TestRun_RejectsWhatRegisterRejects(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad email", []string{"-name", "Valid Name", "-email", "not-an-email", "-password", "secret1"}, "email must be a valid email address"},
		{"short name", []string{"-name", "X", "-email", "x@example.com", "-password", "secret1"}, "name must be at least 2 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "test_invalid.db")
			err := run(sqliteArgs(dbPath, tt.args...), new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			store, err := repository.OpenSQLite(context.Background(), dbPath)
			require.NoError(t, err)
			defer store.Close()
			_, err = store.Users().FindByEmail(context.Background(), "x@example.com")
			assert.ErrorIs(t, err, contract.ErrNotFound)
		})
	}
}
