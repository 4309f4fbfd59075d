package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in PRAGMA user_version by EnsureSchema.
const SchemaVersion = 1

// schema is the full database schema. The constraints here are the final
// word on every record invariant; the store pre-checks them only to report
// precise errors.
const schema = `
CREATE TABLE IF NOT EXISTS books (
    book_id          INTEGER PRIMARY KEY,
    title            TEXT NOT NULL CHECK (trim(title) <> ''),
    author           TEXT NOT NULL CHECK (trim(author) <> ''),
    isbn             TEXT UNIQUE,
    publication_year INTEGER CHECK (publication_year IS NULL OR publication_year > 0),
    genre            TEXT,
    total_copies     INTEGER NOT NULL DEFAULT 1 CHECK (total_copies >= 0),
    available_copies INTEGER NOT NULL DEFAULT 1,
    cover            BLOB,
    cover_mime       TEXT,
    CHECK (available_copies >= 0 AND available_copies <= total_copies)
);

CREATE TABLE IF NOT EXISTS members (
    member_id         INTEGER PRIMARY KEY,
    first_name        TEXT NOT NULL CHECK (trim(first_name) <> ''),
    last_name         TEXT NOT NULL CHECK (trim(last_name) <> ''),
    email             TEXT NOT NULL UNIQUE,
    phone             TEXT,
    join_date         TEXT NOT NULL DEFAULT (date('now')) CHECK (date(join_date) IS join_date),
    membership_status TEXT NOT NULL DEFAULT 'Active'
                      CHECK (membership_status IN ('Active', 'Expired', 'Suspended')),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS borrowings (
    borrowing_id INTEGER PRIMARY KEY,
    book_id      INTEGER NOT NULL REFERENCES books(book_id) ON DELETE RESTRICT,
    member_id    INTEGER NOT NULL REFERENCES members(member_id) ON DELETE RESTRICT,
    borrow_date  TEXT NOT NULL CHECK (date(borrow_date) IS borrow_date),
    due_date     TEXT NOT NULL CHECK (date(due_date) IS due_date),
    return_date  TEXT CHECK (return_date IS NULL OR date(return_date) IS return_date),
    CHECK (due_date >= borrow_date),
    CHECK (return_date IS NULL OR return_date >= borrow_date)
);

CREATE INDEX IF NOT EXISTS idx_borrowings_member ON borrowings(member_id);
CREATE INDEX IF NOT EXISTS idx_borrowings_book ON borrowings(book_id);
CREATE INDEX IF NOT EXISTS idx_borrowings_open_due
    ON borrowings(due_date) WHERE return_date IS NULL;

CREATE TABLE IF NOT EXISTS students (
    student_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name    TEXT NOT NULL CHECK (trim(first_name) <> ''),
    last_name     TEXT NOT NULL CHECK (trim(last_name) <> ''),
    email         TEXT NOT NULL UNIQUE,
    date_of_birth TEXT CHECK (date_of_birth IS NULL OR date(date_of_birth) IS date_of_birth),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS courses (
    course_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    course_code TEXT NOT NULL UNIQUE CHECK (trim(course_code) <> ''),
    title       TEXT NOT NULL CHECK (trim(title) <> ''),
    description TEXT,
    credits     INTEGER NOT NULL CHECK (credits > 0),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS enrollments (
    enrollment_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id      INTEGER NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
    course_id       INTEGER NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
    enrollment_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    grade           TEXT CHECK (grade IS NULL OR length(grade) BETWEEN 1 AND 2),
    UNIQUE (student_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}

// CurrentVersion returns the schema version recorded in the database.
func CurrentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}
