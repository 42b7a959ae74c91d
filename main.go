package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hpmalinova/Expense-Tracker/config"
	"github.com/hpmalinova/Expense-Tracker/logger"
	"github.com/hpmalinova/Expense-Tracker/repository"
	"github.com/hpmalinova/Expense-Tracker/rest"
	"github.com/hpmalinova/Expense-Tracker/web"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log := logger.New(logger.DefaultConfig())
		log.Error("Configuration validation failed", logger.FieldError, err)
		os.Exit(1)
	}

	log := logger.New(cfg.LoggerConfig())
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", logger.FieldError, err)
		os.Exit(1)
	}
	log.Info("Server stopped gracefully")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeLog := log.WithComponent(logger.ComponentStorage)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, err := repository.Open(connectCtx, cfg.RepositoryOptions())
	cancel()
	if err != nil {
		storeLog.Error("Failed to open store", logger.FieldBackend, cfg.DataBackend, logger.FieldError, err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			storeLog.Error("Failed to close store", logger.FieldError, err)
		}
	}()
	storeLog.Info("Store ready", logger.FieldBackend, cfg.DataBackend)

	a := &rest.App{ClientURL: cfg.ClientURL, Frontend: web.Handler()}
	if err := a.Init(store, rest.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), log); err != nil {
		return err
	}

	log.Info("Starting expense tracker", "port", cfg.Port, logger.FieldBackend, cfg.DataBackend)
	return a.Run(ctx, ":"+cfg.Port)
}
