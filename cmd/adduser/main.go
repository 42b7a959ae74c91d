package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/hpmalinova/Expense-Tracker/config"
	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/repository"
	"github.com/hpmalinova/Expense-Tracker/rest"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	backend := fs.String("backend", cfg.DataBackend, "Store backend: "+strings.Join(repository.Backends, ", "))
	sqlitePath := fs.String("sqlite", cfg.SQLiteDBPath, "Path to SQLite database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-backend <backend>] [-sqlite <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	req := model.UserRegister{
		Name:     strings.TrimSpace(*name),
		Email:    rest.NormalizeEmail(*email),
		Password: password,
	}
	if err := validateUser(req); err != nil {
		return err
	}

	opts := cfg.RepositoryOptions()
	opts.Backend = *backend
	opts.SQLitePath = *sqlitePath

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate id: %w", err)
	}

	user, err := store.Users().Create(ctx, &model.User{
		ID:           id.String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	})
	if errors.Is(err, contract.ErrUserExists) {
		return fmt.Errorf("user %s already exists", req.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Email, user.ID)
	return nil
}

// validateUser applies the same rules as POST /api/auth/register.
func validateUser(req model.UserRegister) error {
	v, trans, err := rest.NewValidator()
	if err != nil {
		return err
	}
	err = v.Struct(req)
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return fmt.Errorf("invalid user: %s", strings.Join(msgs, "; "))
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
