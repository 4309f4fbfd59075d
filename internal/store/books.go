package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

const bookColumns = `book_id, title, author, isbn, publication_year, genre,
        total_copies, available_copies, cover_mime`

// CreateBook adds a catalog entry. AvailableCopies is taken as given and
// must not exceed TotalCopies.
func CreateBook(ctx context.Context, database *sql.DB, b model.Book) (*model.Book, error) {
	if err := model.ValidateBook(b); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`INSERT INTO books (title, author, isbn, publication_year, genre, total_copies, available_copies)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, nullString(b.ISBN), b.PublicationYear, nullString(b.Genre),
		b.TotalCopies, b.AvailableCopies,
	)
	if err != nil {
		return nil, db.Classify(err, "creating book")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, database, id)
}

// GetBook returns a book by ID.
func GetBook(ctx context.Context, database *sql.DB, id int64) (*model.Book, error) {
	return getBook(ctx, database, id)
}

func getBook(ctx context.Context, q querier, id int64) (*model.Book, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE book_id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, notFound("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return b, nil
}

// ListBooks returns books matching the filter, ordered by title.
func ListBooks(ctx context.Context, database *sql.DB, f model.BookFilter) ([]model.Book, error) {
	ds := dialect.From("books").
		Select("book_id", "title", "author", "isbn", "publication_year", "genre",
			"total_copies", "available_copies", "cover_mime").
		Order(goqu.C("title").Asc(), goqu.C("book_id").Asc())

	if f.Author != "" {
		ds = ds.Where(goqu.C("author").Eq(f.Author))
	}
	if f.Genre != "" {
		ds = ds.Where(goqu.C("genre").Eq(f.Genre))
	}
	if f.Title != "" {
		ds = ds.Where(goqu.C("title").Like("%" + f.Title + "%"))
	}
	if f.OnlyInStock {
		ds = ds.Where(goqu.C("available_copies").Gt(0))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book query: %w", err)
	}

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// UpdateBook replaces a book's catalog fields. A change to TotalCopies
// moves AvailableCopies by the same amount, so copies on loan stay on
// loan; the update fails if more copies are lent out than the new total.
// The AvailableCopies field of b is ignored.
func UpdateBook(ctx context.Context, database *sql.DB, id int64, b model.Book) (*model.Book, error) {
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var total, available int
		err := tx.QueryRowContext(ctx,
			`SELECT total_copies, available_copies FROM books WHERE book_id = ?`, id,
		).Scan(&total, &available)
		if err == sql.ErrNoRows {
			return notFound("book", id)
		}
		if err != nil {
			return fmt.Errorf("reading book copies: %w", err)
		}

		onLoan := total - available
		b.AvailableCopies = b.TotalCopies - onLoan
		if b.AvailableCopies < 0 {
			return fmt.Errorf("%w: book %d has %d copies on loan, cannot reduce total to %d",
				model.ErrInvalidState, id, onLoan, b.TotalCopies)
		}
		if err := model.ValidateBook(b); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE books SET title = ?, author = ?, isbn = ?, publication_year = ?, genre = ?,
			        total_copies = ?, available_copies = ?
			 WHERE book_id = ?`,
			b.Title, b.Author, nullString(b.ISBN), b.PublicationYear, nullString(b.Genre),
			b.TotalCopies, b.AvailableCopies, id,
		)
		if err != nil {
			return db.Classify(err, "updating book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetBook(ctx, database, id)
}

// DeleteBook removes a book. Books referenced by any borrowing are kept,
// since borrowings are never deleted.
func DeleteBook(ctx context.Context, database *sql.DB, id int64) error {
	return db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM borrowings WHERE book_id = ?`, id,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking book borrowings: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: book %d is referenced by %d borrowings", model.ErrConflict, id, count)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id)
		if err != nil {
			return db.Classify(err, "deleting book")
		}
		return expectOne(result, "book", id)
	})
}

// SetBookCover stores a processed cover image for a book.
func SetBookCover(ctx context.Context, database *sql.DB, id int64, image []byte, mime string) error {
	result, err := database.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ? WHERE book_id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return expectOne(result, "book", id)
}

// GetBookCover returns a book's cover image and MIME type. A book without
// a cover yields nil data.
func GetBookCover(ctx context.Context, database *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := database.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE book_id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", notFound("book", id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return image, mime.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*model.Book, error) {
	b := &model.Book{}
	var isbn, genre, coverMime sql.NullString
	var year sql.NullInt64
	err := s.Scan(&b.ID, &b.Title, &b.Author, &isbn, &year, &genre,
		&b.TotalCopies, &b.AvailableCopies, &coverMime)
	if err != nil {
		return nil, err
	}
	b.ISBN = isbn.String
	b.Genre = genre.String
	b.CoverMime = coverMime.String
	if year.Valid {
		y := int(year.Int64)
		b.PublicationYear = &y
	}
	return b, nil
}
