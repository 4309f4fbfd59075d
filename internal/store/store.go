// Package store holds the record accessors and the transactional
// operations that move books between shelf and borrower and students in
// and out of courses. Every write either commits whole or has no effect.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/erazemk/evidenca/internal/model"
)

// dialect builds the filtered list queries.
var dialect = goqu.Dialect("sqlite3")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nullString stores empty optional text as NULL so that UNIQUE columns
// such as isbn allow any number of absent values.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", model.ErrNotFound, kind, id)
}

// exists reports whether a row with the given primary key is present.
func exists(ctx context.Context, q querier, table, column string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = ?`, table, column), id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %d: %w", table, id, err)
	}
	return true, nil
}

// expectOne turns a zero-row write into ErrNotFound.
func expectOne(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected rows: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
