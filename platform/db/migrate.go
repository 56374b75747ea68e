package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending goose migrations found at the root of fsys.
func RunMigrations(ctx context.Context, cfg config.MigrationConfig, fsys fs.FS, log *logger.Logger) error {
	if !cfg.GetAutoMigrate() {
		log.Info("database migrations skipped", "reason", "DB_AUTO_MIGRATE=false")
		return nil
	}

	sqlDB, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("create migration provider: %w", err)
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}

	return nil
}
