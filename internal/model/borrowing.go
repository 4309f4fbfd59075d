package model

// Borrowing is one loan of one book copy to one member. It is open while
// ReturnDate is nil and is closed exactly once by a return.
type Borrowing struct {
	ID         int64 `json:"borrowing_id" db:"borrowing_id"`
	BookID     int64 `json:"book_id" db:"book_id"`
	MemberID   int64 `json:"member_id" db:"member_id"`
	BorrowDate Date  `json:"borrow_date" db:"borrow_date"`
	DueDate    Date  `json:"due_date" db:"due_date"`
	ReturnDate *Date `json:"return_date" db:"return_date"`

	// Joined fields (not always populated).
	BookTitle  string `json:"book_title,omitempty" db:"book_title"`
	MemberName string `json:"member_name,omitempty" db:"member_name"`
}

// Open reports whether the borrowing has not been returned yet.
func (b Borrowing) Open() bool {
	return b.ReturnDate == nil
}

// Status classifies the borrowing as of today.
func (b Borrowing) Status(today Date) BorrowingStatus {
	return ClassifyBorrowing(b.DueDate, b.ReturnDate, today)
}

// BorrowingFilter narrows ListBorrowings. Zero ids match everything.
type BorrowingFilter struct {
	BookID   int64
	MemberID int64
	OpenOnly bool
}

// BorrowingStatus is the derived state of a borrowing. It is never stored.
type BorrowingStatus string

// Borrowing statuses.
const (
	BorrowingCurrent        BorrowingStatus = "Current"
	BorrowingOverdue        BorrowingStatus = "Overdue"
	BorrowingReturnedOnTime BorrowingStatus = "Returned on time"
	BorrowingReturnedLate   BorrowingStatus = "Returned late"
)

// ClassifyBorrowing derives the status of a borrowing. An early return
// counts as on time.
func ClassifyBorrowing(due Date, returned *Date, today Date) BorrowingStatus {
	if returned == nil {
		if due.Before(today) {
			return BorrowingOverdue
		}
		return BorrowingCurrent
	}
	if returned.After(due) {
		return BorrowingReturnedLate
	}
	return BorrowingReturnedOnTime
}

// DaysOverdue returns how many days past due an open borrowing is as of
// today, or zero when it is not overdue.
func DaysOverdue(due Date, today Date) int {
	if !due.Before(today) {
		return 0
	}
	return today.DaysSince(due)
}
