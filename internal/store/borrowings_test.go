package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

var march10 = model.NewDate(2024, time.March, 10)

type lendingFixture struct {
	db     *sql.DB
	book   *model.Book
	member *model.Member
}

func newLendingFixture(t *testing.T, copies int) lendingFixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, model.Book{
		Title: "The Name of the Rose", Author: "Umberto Eco",
		TotalCopies: copies, AvailableCopies: copies,
	})
	require.NoError(t, err)

	member, err := CreateMember(ctx, database, model.Member{
		FirstName: "Ana", LastName: "Novak", Email: "ana@example.com",
	})
	require.NoError(t, err)

	return lendingFixture{db: database, book: book, member: member}
}

func (f lendingFixture) available(t *testing.T) int {
	t.Helper()
	b, err := GetBook(context.Background(), f.db, f.book.ID)
	require.NoError(t, err)
	return b.AvailableCopies
}

func TestCheckoutDecrementsAvailability(t *testing.T) {
	f := newLendingFixture(t, 3)
	ctx := context.Background()

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)

	assert.Equal(t, 2, f.available(t))
	assert.True(t, b.Open())
	assert.True(t, b.BorrowDate.Equal(march10))
	assert.True(t, b.DueDate.Equal(model.NewDate(2024, time.March, 24)))
	assert.Equal(t, "The Name of the Rose", b.BookTitle)
	assert.Equal(t, "Ana Novak", b.MemberName)
}

func TestCheckoutLastCopyThenUnavailable(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	_, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t))

	_, err = Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Equal(t, 0, f.available(t))

	open, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{BookID: f.book.ID, OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestCheckoutRejectsIneligibleMember(t *testing.T) {
	for _, status := range []model.MembershipStatus{model.MembershipSuspended, model.MembershipExpired} {
		t.Run(string(status), func(t *testing.T) {
			f := newLendingFixture(t, 2)
			ctx := context.Background()
			require.NoError(t, UpdateMemberStatus(ctx, f.db, f.member.ID, status))

			_, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
			assert.ErrorIs(t, err, model.ErrMemberIneligible)
			assert.Equal(t, 2, f.available(t))

			all, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCheckoutMissingRecords(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	_, err := Checkout(ctx, f.db, 999, f.member.ID, march10, march10)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = Checkout(ctx, f.db, f.book.ID, 999, march10, march10)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, f.available(t))
}

func TestCheckoutRejectsPastDueDate(t *testing.T) {
	f := newLendingFixture(t, 1)

	_, err := Checkout(context.Background(), f.db, f.book.ID, f.member.ID, march10.AddDays(-1), march10)
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Equal(t, 1, f.available(t))
}

func TestConcurrentCheckoutOfLastCopy(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	const callers = 2
	results := make([]error, callers)
	start := make(chan struct{})
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			<-start
			_, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
			results[i] = err
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	var ok, unavailable int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrUnavailable):
			unavailable++
		default:
			t.Errorf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 0, f.available(t))
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	const copies, callers = 3, 10
	f := newLendingFixture(t, copies)
	ctx := context.Background()

	var g errgroup.Group
	succeeded := make(chan int64, callers)
	for range callers {
		g.Go(func() error {
			b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(7), march10)
			if errors.Is(err, model.ErrUnavailable) {
				return nil
			}
			if err != nil {
				return err
			}
			succeeded <- b.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(succeeded)

	assert.Len(t, succeeded, copies)
	assert.Equal(t, 0, f.available(t))
}

func TestReturnTwiceIncrementsOnce(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)

	returned, err := ReturnBook(ctx, f.db, b.ID, march10.AddDays(3))
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, returned.ReturnDate.Equal(march10.AddDays(3)))
	assert.Equal(t, 1, f.available(t))

	_, err = ReturnBook(ctx, f.db, b.ID, march10.AddDays(4))
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	assert.Equal(t, 1, f.available(t))

	again, err := GetBorrowing(ctx, f.db, b.ID)
	require.NoError(t, err)
	assert.True(t, again.ReturnDate.Equal(march10.AddDays(3)), "first return date is kept")
}

func TestConcurrentReturnsSucceedOnce(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)

	results := make([]error, 4)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = ReturnBook(ctx, f.db, b.ID, march10.AddDays(1))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, f.available(t))
}

func TestReturnBeforeBorrowDateRejected(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)

	_, err = ReturnBook(ctx, f.db, b.ID, march10.AddDays(-1))
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Equal(t, 0, f.available(t))

	still, err := GetBorrowing(ctx, f.db, b.ID)
	require.NoError(t, err)
	assert.True(t, still.Open())
}

func TestReturnUnknownBorrowing(t *testing.T) {
	f := newLendingFixture(t, 1)

	_, err := ReturnBook(context.Background(), f.db, 12345, march10)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCheckoutReturnRoundTrip(t *testing.T) {
	f := newLendingFixture(t, 4)
	ctx := context.Background()
	before := f.available(t)

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)
	_, err = ReturnBook(ctx, f.db, b.ID, march10)
	require.NoError(t, err)

	assert.Equal(t, before, f.available(t))
}

func TestReturnDetectsCounterDrift(t *testing.T) {
	f := newLendingFixture(t, 1)
	ctx := context.Background()

	b, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)

	// Put the copy back behind the engine's back.
	_, err = f.db.Exec(`UPDATE books SET available_copies = total_copies WHERE book_id = ?`, f.book.ID)
	require.NoError(t, err)

	_, err = ReturnBook(ctx, f.db, b.ID, march10)
	assert.ErrorIs(t, err, model.ErrConsistency)

	still, err := GetBorrowing(ctx, f.db, b.ID)
	require.NoError(t, err)
	assert.True(t, still.Open(), "failed return must not close the borrowing")
}

func TestListBorrowingsFilters(t *testing.T) {
	f := newLendingFixture(t, 5)
	ctx := context.Background()

	other, err := CreateMember(ctx, f.db, model.Member{FirstName: "Bor", LastName: "Kos", Email: "bor@example.com"})
	require.NoError(t, err)

	first, err := Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(14), march10)
	require.NoError(t, err)
	_, err = Checkout(ctx, f.db, f.book.ID, f.member.ID, march10.AddDays(15), march10.AddDays(1))
	require.NoError(t, err)
	_, err = Checkout(ctx, f.db, f.book.ID, other.ID, march10.AddDays(14), march10)
	require.NoError(t, err)
	_, err = ReturnBook(ctx, f.db, first.ID, march10.AddDays(2))
	require.NoError(t, err)

	all, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[0].BorrowDate.Equal(march10.AddDays(1)), "newest first")

	mine, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{MemberID: f.member.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	myOpen, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{MemberID: f.member.ID, OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, myOpen, 1)
	assert.Nil(t, myOpen[0].ReturnDate)

	none, err := ListBorrowings(ctx, f.db, model.BorrowingFilter{BookID: 999})
	require.NoError(t, err)
	assert.Empty(t, none)
}
