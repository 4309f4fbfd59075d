package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

// Checkout lends one copy of a book to a member. The borrowing starts
// today and is due on due. The availability check, the decrement and the
// new borrowing row are applied in one transaction, so two checkouts
// racing for the last copy cannot both succeed.
func Checkout(ctx context.Context, database *sql.DB, bookID, memberID int64, due, today model.Date) (*model.Borrowing, error) {
	if err := model.ValidateDueDate(due, today); err != nil {
		return nil, fmt.Errorf("checking out book %d: %w", bookID, err)
	}

	var id int64
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT available_copies FROM books WHERE book_id = ?`, bookID,
		).Scan(&available)
		if err == sql.ErrNoRows {
			return notFound("book", bookID)
		}
		if err != nil {
			return fmt.Errorf("reading book availability: %w", err)
		}

		var status model.MembershipStatus
		err = tx.QueryRowContext(ctx,
			`SELECT membership_status FROM members WHERE member_id = ?`, memberID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return notFound("member", memberID)
		}
		if err != nil {
			return fmt.Errorf("reading member status: %w", err)
		}
		if !status.CanBorrow() {
			return fmt.Errorf("%w: member %d is %s", model.ErrMemberIneligible, memberID, status)
		}

		if available <= 0 {
			return fmt.Errorf("%w: book %d has no copies available", model.ErrUnavailable, bookID)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies - 1
			 WHERE book_id = ? AND available_copies > 0`, bookID,
		)
		if err != nil {
			return db.Classify(err, "reserving copy")
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("counting reserved copies: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("%w: book %d has no copies available", model.ErrUnavailable, bookID)
		}

		result, err = tx.ExecContext(ctx,
			`INSERT INTO borrowings (book_id, member_id, borrow_date, due_date) VALUES (?, ?, ?, ?)`,
			bookID, memberID, today, due,
		)
		if err != nil {
			return db.Classify(err, "recording borrowing")
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting borrowing id: %w", err)
		}

		return verifyCopies(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}

	return GetBorrowing(ctx, database, id)
}

// ReturnBook closes an open borrowing on returnDate and puts the copy back
// on the shelf. A borrowing can be returned only once.
func ReturnBook(ctx context.Context, database *sql.DB, borrowingID int64, returnDate model.Date) (*model.Borrowing, error) {
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var bookID int64
		var borrow, due model.Date
		var returned *model.Date
		err := tx.QueryRowContext(ctx,
			`SELECT book_id, borrow_date, due_date, return_date FROM borrowings WHERE borrowing_id = ?`,
			borrowingID,
		).Scan(&bookID, &borrow, &due, &returned)
		if err == sql.ErrNoRows {
			return notFound("borrowing", borrowingID)
		}
		if err != nil {
			return fmt.Errorf("reading borrowing: %w", err)
		}
		if returned != nil {
			return fmt.Errorf("%w: borrowing %d was returned on %s", model.ErrAlreadyReturned, borrowingID, returned)
		}
		if err := model.ValidateBorrowingDates(borrow, due, &returnDate); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE borrowings SET return_date = ? WHERE borrowing_id = ? AND return_date IS NULL`,
			returnDate, borrowingID,
		)
		if err != nil {
			return db.Classify(err, "closing borrowing")
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("counting closed borrowings: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("%w: borrowing %d", model.ErrAlreadyReturned, borrowingID)
		}

		// A return that would push available above total means the
		// counter and the open borrowings have drifted apart.
		_, err = tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies + 1 WHERE book_id = ?`, bookID,
		)
		if err != nil {
			return fmt.Errorf("%w: restoring copy of book %d: %v", model.ErrConsistency, bookID, err)
		}

		return verifyCopies(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}

	return GetBorrowing(ctx, database, borrowingID)
}

// verifyCopies re-reads a book after a copy moved and fails the
// transaction if the counters left their valid range.
func verifyCopies(ctx context.Context, tx *sql.Tx, bookID int64) error {
	var total, available int
	err := tx.QueryRowContext(ctx,
		`SELECT total_copies, available_copies FROM books WHERE book_id = ?`, bookID,
	).Scan(&total, &available)
	if err != nil {
		return fmt.Errorf("%w: re-reading book %d: %v", model.ErrConsistency, bookID, err)
	}
	if err := model.ValidateCopies(available, total); err != nil {
		return fmt.Errorf("%w: book %d has %d of %d copies available", model.ErrConsistency, bookID, available, total)
	}
	return nil
}

// GetBorrowing returns a borrowing with its book title and member name.
func GetBorrowing(ctx context.Context, database *sql.DB, id int64) (*model.Borrowing, error) {
	query, args, err := borrowingsQuery().
		Where(goqu.I("br.borrowing_id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building borrowing query: %w", err)
	}

	b, err := scanBorrowing(database.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, notFound("borrowing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrowing: %w", err)
	}
	return b, nil
}

// ListBorrowings returns borrowings matching the filter, newest first.
func ListBorrowings(ctx context.Context, database *sql.DB, f model.BorrowingFilter) ([]model.Borrowing, error) {
	ds := borrowingsQuery().
		Order(goqu.I("br.borrow_date").Desc(), goqu.I("br.borrowing_id").Desc())

	if f.BookID != 0 {
		ds = ds.Where(goqu.I("br.book_id").Eq(f.BookID))
	}
	if f.MemberID != 0 {
		ds = ds.Where(goqu.I("br.member_id").Eq(f.MemberID))
	}
	if f.OpenOnly {
		ds = ds.Where(goqu.I("br.return_date").IsNull())
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building borrowing query: %w", err)
	}

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing borrowings: %w", err)
	}
	defer rows.Close()

	var borrowings []model.Borrowing
	for rows.Next() {
		b, err := scanBorrowing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning borrowing: %w", err)
		}
		borrowings = append(borrowings, *b)
	}
	return borrowings, rows.Err()
}

func borrowingsQuery() *goqu.SelectDataset {
	return dialect.From(goqu.T("borrowings").As("br")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.member_id").Eq(goqu.I("br.member_id")))).
		Select(
			goqu.I("br.borrowing_id"), goqu.I("br.book_id"), goqu.I("br.member_id"),
			goqu.I("br.borrow_date"), goqu.I("br.due_date"), goqu.I("br.return_date"),
			goqu.I("b.title"),
			goqu.L("m.first_name || ' ' || m.last_name"),
		)
}

func scanBorrowing(s rowScanner) (*model.Borrowing, error) {
	b := &model.Borrowing{}
	err := s.Scan(&b.ID, &b.BookID, &b.MemberID, &b.BorrowDate, &b.DueDate, &b.ReturnDate,
		&b.BookTitle, &b.MemberName)
	if err != nil {
		return nil, err
	}
	return b, nil
}
