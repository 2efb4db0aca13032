package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"table-order-system/internal/models"
)

// lockTimeout is how long a caller may wait for a named lock before the
// operation is reported as busy.
const lockTimeout = "5s"

// pgLockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

// WithNamedLock runs fn inside a transaction that holds the named advisory
// lock. The lock is keyed by name, scoped to the transaction, and released
// automatically on commit or rollback. If the lock cannot be acquired within
// the timeout, models.ErrBusy is returned and nothing is applied.
//
// Every read-modify-write sequence on the category sort order goes through
// this single-writer scope.
func (db *DB) WithNamedLock(ctx context.Context, name string, fn func(tx pgx.Tx) error) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}

		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", name); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
				return fmt.Errorf("lock %q: %w", name, models.ErrBusy)
			}
			return fmt.Errorf("failed to acquire lock %q: %w", name, err)
		}

		return fn(tx)
	})
}
