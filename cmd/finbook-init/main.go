// Command finbook-init is the administrative bootstrap: it creates the
// storage schema and, when no seed user exists yet, provisions one with
// the password from ADMIN_PASSWORD. Re-running it is a no-op.
package main

import (
	"context"
	"errors"
	"os"

	"finbook/internal/auth"
	"finbook/internal/cli"
	"finbook/internal/storage"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	applied, err := storage.RunMigrations(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Schema migration failed", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	if applied {
		logger.Info("Schema created", "path", cfg.SQLiteDBPath)
	}

	repo := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx := context.Background()
	if _, err := repo.GetUserByUsername(ctx, cfg.AdminUsername); err == nil {
		logger.Info("already initialized", "username", cfg.AdminUsername)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Seed user lookup failed", "error", err)
		os.Exit(1)
	}

	if cfg.AdminPassword == "" {
		logger.Error("ADMIN_PASSWORD must be set to create the seed user")
		os.Exit(1)
	}

	creds := auth.NewCredentials(repo)
	user, err := creds.CreateUser(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Error("Seed user creation failed", "error", err, "username", cfg.AdminUsername)
		os.Exit(1)
	}

	logger.Info("Database initialized and seed user created",
		"user_id", user.ID, "username", user.Username)
}
