package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func Migrate(database *sql.DB) error {
	return MigrateContext(context.Background(), database)
}

// MigrateContext applies every migrations/NNN_name.up.sql not yet recorded in
// schema_migrations, in version order, each in its own transaction.
func MigrateContext(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	upMigrations, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(upMigrations)

	applied := 0
	for _, path := range upMigrations {
		filename := strings.TrimPrefix(path, "migrations/")
		version, err := extractVersion(filename)
		if err != nil {
			return err
		}

		var exists int
		if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", filename, err)
		}

		if err := applyMigration(ctx, database, version, string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", filename, err)
		}
		applied++
		slog.Debug("applied migration", "version", version, "file", filename)
	}

	if applied > 0 {
		slog.Info("database migrated", "applied", applied)
	}
	return nil
}

func applyMigration(ctx context.Context, database *sql.DB, version int, content string) error {
	transaction, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("executing: %w", err)
	}
	if _, err := transaction.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version %d: %w", version, err)
	}
	return transaction.Commit()
}

func extractVersion(filename string) (int, error) {
	prefix, _, found := strings.Cut(filename, "_")
	if !found {
		return 0, fmt.Errorf("migration %s has no version prefix", filename)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("parsing version of migration %s: %w", filename, err)
	}
	return version, nil
}
