// Package report computes the read-only views over lending and enrollment
// records. Each view reads from a single transaction, so every row in a
// result reflects the same committed state.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/evidenca/internal/model"
)

var dialect = goqu.Dialect("sqlite3")

// OverdueItem is an open borrowing past its due date.
type OverdueItem struct {
	BorrowingID int64      `json:"borrowing_id" db:"borrowing_id"`
	BookID      int64      `json:"book_id" db:"book_id"`
	Title       string     `json:"title" db:"title"`
	Author      string     `json:"author" db:"author"`
	MemberID    int64      `json:"member_id" db:"member_id"`
	MemberName  string     `json:"member_name" db:"member_name"`
	MemberEmail string     `json:"member_email" db:"member_email"`
	BorrowDate  model.Date `json:"borrow_date" db:"borrow_date"`
	DueDate     model.Date `json:"due_date" db:"due_date"`
	DaysOverdue int        `json:"days_overdue" db:"-"`
}

// Availability is one book's stock line.
type Availability struct {
	BookID          int64  `json:"book_id" db:"book_id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	AvailableCopies int    `json:"available_copies" db:"available_copies"`
	TotalCopies     int    `json:"total_copies" db:"total_copies"`
	OutOfStock      bool   `json:"out_of_stock" db:"out_of_stock"`
}

// HistoryEntry is one borrowing in a member's history.
type HistoryEntry struct {
	BorrowingID int64                 `json:"borrowing_id" db:"borrowing_id"`
	BookID      int64                 `json:"book_id" db:"book_id"`
	Title       string                `json:"title" db:"title"`
	BorrowDate  model.Date            `json:"borrow_date" db:"borrow_date"`
	DueDate     model.Date            `json:"due_date" db:"due_date"`
	ReturnDate  *model.Date           `json:"return_date" db:"return_date"`
	Status      model.BorrowingStatus `json:"status" db:"-"`
}

// CourseEnrollment is a course as seen from one student's enrollments.
type CourseEnrollment struct {
	EnrollmentID   int64     `json:"enrollment_id" db:"enrollment_id"`
	CourseID       int64     `json:"course_id" db:"course_id"`
	Code           string    `json:"course_code" db:"course_code"`
	Title          string    `json:"title" db:"title"`
	Credits        int       `json:"credits" db:"credits"`
	EnrollmentDate time.Time `json:"enrollment_date" db:"enrollment_date"`
	Grade          *string   `json:"grade" db:"grade"`
}

// StudentEnrollment is a student as seen from one course's enrollments.
type StudentEnrollment struct {
	EnrollmentID   int64     `json:"enrollment_id" db:"enrollment_id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Email          string    `json:"email" db:"email"`
	EnrollmentDate time.Time `json:"enrollment_date" db:"enrollment_date"`
	Grade          *string   `json:"grade" db:"grade"`
}

// snapshot runs fn in a read-only transaction.
func snapshot(ctx context.Context, database *sql.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := sqlx.NewDb(database, "sqlite").BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// requireRow fails with ErrNotFound unless the keyed row exists.
func requireRow(ctx context.Context, tx *sqlx.Tx, table, column, kind string, id int64) error {
	var n int
	err := tx.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, column), id)
	if err != nil {
		return fmt.Errorf("checking %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", model.ErrNotFound, kind, id)
	}
	return nil
}

// Overdue lists open borrowings whose due date is before today, most
// overdue first.
func Overdue(ctx context.Context, database *sql.DB, today model.Date) ([]OverdueItem, error) {
	items := []OverdueItem{}
	err := snapshot(ctx, database, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &items, `
			SELECT br.borrowing_id, br.book_id, b.title, b.author,
			       br.member_id, m.first_name || ' ' || m.last_name AS member_name,
			       m.email AS member_email, br.borrow_date, br.due_date
			FROM borrowings br
			JOIN books b ON b.book_id = br.book_id
			JOIN members m ON m.member_id = br.member_id
			WHERE br.return_date IS NULL AND br.due_date < ?
			ORDER BY br.due_date ASC, br.borrowing_id ASC`, today)
	})
	if err != nil {
		return nil, fmt.Errorf("listing overdue borrowings: %w", err)
	}

	for i := range items {
		items[i].DaysOverdue = model.DaysOverdue(items[i].DueDate, today)
	}
	return items, nil
}

// AvailabilityReport lists every book with its stock, ordered by title.
func AvailabilityReport(ctx context.Context, database *sql.DB) ([]Availability, error) {
	rows := []Availability{}
	err := snapshot(ctx, database, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, `
			SELECT book_id, title, author, available_copies, total_copies,
			       available_copies = 0 AS out_of_stock
			FROM books
			ORDER BY title, book_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("building availability report: %w", err)
	}
	return rows, nil
}

// BorrowingHistory lists every borrowing of a member, newest first, with
// its status as of today.
func BorrowingHistory(ctx context.Context, database *sql.DB, memberID int64, today model.Date) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	err := snapshot(ctx, database, func(tx *sqlx.Tx) error {
		if err := requireRow(ctx, tx, "members", "member_id", "member", memberID); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &entries, `
			SELECT br.borrowing_id, br.book_id, b.title, br.borrow_date, br.due_date, br.return_date
			FROM borrowings br
			JOIN books b ON b.book_id = br.book_id
			WHERE br.member_id = ?
			ORDER BY br.borrow_date DESC, br.borrowing_id DESC`, memberID)
	})
	if err != nil {
		return nil, fmt.Errorf("reading borrowing history: %w", err)
	}

	for i := range entries {
		entries[i].Status = model.ClassifyBorrowing(entries[i].DueDate, entries[i].ReturnDate, today)
	}
	return entries, nil
}

// OpenBorrowings lists unreturned borrowings, optionally for one member
// or one book, soonest due first.
func OpenBorrowings(ctx context.Context, database *sql.DB, f model.BorrowingFilter) ([]model.Borrowing, error) {
	ds := dialect.From(goqu.T("borrowings").As("br")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.member_id").Eq(goqu.I("br.member_id")))).
		Select(
			goqu.I("br.borrowing_id"), goqu.I("br.book_id"), goqu.I("br.member_id"),
			goqu.I("br.borrow_date"), goqu.I("br.due_date"), goqu.I("br.return_date"),
			goqu.I("b.title").As("book_title"),
			goqu.L("m.first_name || ' ' || m.last_name").As("member_name"),
		).
		Where(goqu.I("br.return_date").IsNull()).
		Order(goqu.I("br.due_date").Asc(), goqu.I("br.borrowing_id").Asc())

	if f.MemberID != 0 {
		ds = ds.Where(goqu.I("br.member_id").Eq(f.MemberID))
	}
	if f.BookID != 0 {
		ds = ds.Where(goqu.I("br.book_id").Eq(f.BookID))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building open borrowings query: %w", err)
	}

	borrowings := []model.Borrowing{}
	err = snapshot(ctx, database, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &borrowings, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("listing open borrowings: %w", err)
	}
	return borrowings, nil
}

// StudentCourses lists the courses a student is enrolled in.
func StudentCourses(ctx context.Context, database *sql.DB, studentID int64) ([]CourseEnrollment, error) {
	courses := []CourseEnrollment{}
	err := snapshot(ctx, database, func(tx *sqlx.Tx) error {
		if err := requireRow(ctx, tx, "students", "student_id", "student", studentID); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &courses, `
			SELECT e.enrollment_id, c.course_id, c.course_code, c.title, c.credits,
			       e.enrollment_date, e.grade
			FROM enrollments e
			JOIN courses c ON c.course_id = e.course_id
			WHERE e.student_id = ?
			ORDER BY c.course_code`, studentID)
	})
	if err != nil {
		return nil, fmt.Errorf("listing student courses: %w", err)
	}
	return courses, nil
}

// CourseStudents lists the students enrolled in a course.
func CourseStudents(ctx context.Context, database *sql.DB, courseID int64) ([]StudentEnrollment, error) {
	students := []StudentEnrollment{}
	err := snapshot(ctx, database, func(tx *sqlx.Tx) error {
		if err := requireRow(ctx, tx, "courses", "course_id", "course", courseID); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &students, `
			SELECT e.enrollment_id, s.student_id, s.first_name, s.last_name, s.email,
			       e.enrollment_date, e.grade
			FROM enrollments e
			JOIN students s ON s.student_id = e.student_id
			WHERE e.course_id = ?
			ORDER BY s.last_name, s.first_name, s.student_id`, courseID)
	})
	if err != nil {
		return nil, fmt.Errorf("listing course students: %w", err)
	}
	return students, nil
}
