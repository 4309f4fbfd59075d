package db

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/evidenca/internal/model"
)

// IsBusy reports whether err is SQLite refusing a lock.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// Classify maps a constraint failure reported by the database onto the
// model error taxonomy. Errors that are not constraint failures are
// returned unchanged. what describes the attempted write.
func Classify(err error, what string) error {
	if err == nil {
		return nil
	}
	kind := constraintKind(err)
	if kind == nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%s: %w: %s", what, kind, constraintDetail(err))
}

func constraintKind(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return model.ErrConflict
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return model.ErrNotFound
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return model.ErrInvalidState
		}
	}

	// Fall back to the message for drivers that only report the primary code.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return model.ErrConflict
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return model.ErrNotFound
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return model.ErrInvalidState
	}
	return nil
}

func constraintDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "constraint failed"); i >= 0 {
		return strings.TrimSpace(msg[i:])
	}
	return msg
}
