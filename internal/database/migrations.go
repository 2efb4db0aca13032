package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	createSchemaMigrationsSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectAppliedMigrationsSQL = `
		SELECT migration_name FROM schema_migrations`

	insertAppliedMigrationSQL = `
		INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// RunMigrations applies every pending .sql file in dir, in lexical order.
// Applied filenames are recorded in schema_migrations, so reruns skip them.
func (db *DB) RunMigrations(ctx context.Context, dir string) error {
	if err := db.Exec(ctx, createSchemaMigrationsSQL); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := listMigrationFiles(dir)
	if err != nil {
		return fmt.Errorf("list migration files: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	for _, name := range files {
		if applied[name] {
			continue
		}

		if err := db.applyMigration(ctx, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if err := db.Exec(ctx, insertAppliedMigrationSQL, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}

		db.logger.Info("migration_applied", fmt.Sprintf("Applied migration %s", name), "startup", nil)
	}

	return nil
}

// listMigrationFiles returns the .sql files in dir sorted by name, which is
// the order they run in.
func listMigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := db.Query(ctx, selectAppliedMigrationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// applyMigration runs one migration file in its own transaction.
func (db *DB) applyMigration(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}

	return db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, string(content))
		return err
	})
}
