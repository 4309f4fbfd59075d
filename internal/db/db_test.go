package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/evidenca/internal/model"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	require.NoError(t, EnsureSchema(database))

	v, err := CurrentVersion(database)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	database := NewTestDB(t)
	database.SetMaxOpenConns(4)
	ctx := context.Background()

	// Hold several connections at once so each is a distinct pooled connection.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := database.Conn(ctx)
		require.NoError(t, err)
		conns[i] = c
	}
	for _, c := range conns {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on)
		c.Close()
	}
}

func TestSchemaRejectsAvailableAboveTotal(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO books (title, author, total_copies, available_copies) VALUES ('T', 'A', 1, 2)`)
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err, "creating book"), model.ErrInvalidState)
}

func TestSchemaRejectsBadDates(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO books (title, author) VALUES ('T', 'A')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO members (first_name, last_name, email) VALUES ('F', 'L', 'f@example.com')`)
	require.NoError(t, err)

	_, err = database.Exec(
		`INSERT INTO borrowings (book_id, member_id, borrow_date, due_date) VALUES (1, 1, '2024-03-10', '2024-03-01')`)
	assert.ErrorIs(t, Classify(err, "creating borrowing"), model.ErrInvalidState)

	_, err = database.Exec(
		`INSERT INTO borrowings (book_id, member_id, borrow_date, due_date) VALUES (1, 1, '10/03/2024', '2024-03-24')`)
	assert.ErrorIs(t, Classify(err, "creating borrowing"), model.ErrInvalidState)
}

func TestClassifyConstraintKinds(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO members (first_name, last_name, email) VALUES ('F', 'L', 'dup@example.com')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO members (first_name, last_name, email) VALUES ('G', 'M', 'dup@example.com')`)
	assert.ErrorIs(t, Classify(err, "creating member"), model.ErrConflict)

	_, err = database.Exec(
		`INSERT INTO borrowings (book_id, member_id, borrow_date, due_date) VALUES (99, 1, '2024-03-10', '2024-03-24')`)
	assert.ErrorIs(t, Classify(err, "creating borrowing"), model.ErrNotFound)

	_, err = database.Exec(`INSERT INTO members (first_name, last_name, email, membership_status) VALUES ('F', 'L', 'x@example.com', 'Banned')`)
	assert.ErrorIs(t, Classify(err, "creating member"), model.ErrInvalidState)

	plain := errors.New("disk on fire")
	classified := Classify(plain, "writing")
	assert.ErrorIs(t, classified, plain)
	assert.NotErrorIs(t, classified, model.ErrConflict)
	assert.NoError(t, Classify(nil, "noop"))
}

func TestEnrollmentCascade(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO students (first_name, last_name, email) VALUES ('S', 'T', 's@example.com')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO courses (course_code, title, credits) VALUES ('CS1', 'C', 3)`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO enrollments (student_id, course_id) VALUES (1, 1)`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO enrollments (student_id, course_id) VALUES (1, 1)`)
	assert.ErrorIs(t, Classify(err, "enrolling"), model.ErrConflict)

	_, err = database.Exec(`DELETE FROM students WHERE student_id = 1`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM enrollments`).Scan(&n))
	assert.Zero(t, n)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO books (title, author) VALUES ('T', 'A')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n))
	assert.Zero(t, n)
}

func TestWithTxCommits(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO books (title, author) VALUES ('T', 'A')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestIsBusyIgnoresOtherErrors(t *testing.T) {
	assert.False(t, IsBusy(errors.New("database is locked")))
	assert.False(t, IsBusy(nil))
}
