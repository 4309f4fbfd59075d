package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/evidenca/internal/model"
)

// MaxTxAttempts bounds how often WithTx re-runs a transaction that lost a
// lock race after busy_timeout expired.
var MaxTxAttempts = 5

// WithTx runs fn inside one write transaction. The transaction is rolled
// back if fn returns an error and retried from the start when the database
// reports it is busy. fn must be safe to re-run.
func WithTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= MaxTxAttempts; attempt++ {
		err = runTx(ctx, database, fn)
		if err == nil || !IsBusy(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: database busy after %d attempts: %v", model.ErrConflict, MaxTxAttempts, err)
}

func runTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
