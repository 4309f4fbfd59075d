package model

import (
	"fmt"
	"net/mail"
	"strings"
)

// Rule names reported with ErrInvalidState.
const (
	RuleRequired          = "required field is empty"
	RuleEmail             = "email must be a valid address"
	RuleCopiesNonNegative = "total_copies >= 0"
	RuleCopiesRange       = "0 <= available_copies <= total_copies"
	RulePublicationYear   = "publication_year > 0"
	RuleMembershipStatus  = "membership_status in (Active, Expired, Suspended)"
	RuleDueAfterBorrow    = "due_date >= borrow_date"
	RuleReturnAfterBorrow = "return_date >= borrow_date"
	RuleDueNotPast        = "due_date >= today"
	RuleCredits           = "credits > 0"
	RuleGrade             = "grade is a 1-2 character code"
	RuleBirthDate         = "date_of_birth is not in the future"
)

// MaxGradeLength is the longest accepted grade code ("A+", "B-", ...).
const MaxGradeLength = 2

func violation(rule string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, rule)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s: %s", ErrInvalidState, RuleRequired, field)
	}
	return nil
}

// ValidateEmail checks that s is a bare, well-formed address.
func ValidateEmail(s string) error {
	if err := required("email", s); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return violation(RuleEmail)
	}
	return nil
}

// ValidateCopies checks the availability invariant of a book.
func ValidateCopies(available, total int) error {
	if total < 0 {
		return violation(RuleCopiesNonNegative)
	}
	if available < 0 || available > total {
		return violation(RuleCopiesRange)
	}
	return nil
}

// ValidateBook checks every column rule of a book row.
func ValidateBook(b Book) error {
	if err := required("title", b.Title); err != nil {
		return err
	}
	if err := required("author", b.Author); err != nil {
		return err
	}
	if b.PublicationYear != nil && *b.PublicationYear <= 0 {
		return violation(RulePublicationYear)
	}
	return ValidateCopies(b.AvailableCopies, b.TotalCopies)
}

// ValidateMember checks every column rule of a member row.
func ValidateMember(m Member) error {
	if err := required("first_name", m.FirstName); err != nil {
		return err
	}
	if err := required("last_name", m.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(m.Email); err != nil {
		return err
	}
	if !m.Status.Valid() {
		return violation(RuleMembershipStatus)
	}
	return nil
}

// ValidateBorrowingDates checks the date ordering of a borrowing.
func ValidateBorrowingDates(borrow, due Date, returned *Date) error {
	if borrow.IsZero() {
		return fmt.Errorf("%w: %s: borrow_date", ErrInvalidState, RuleRequired)
	}
	if due.IsZero() {
		return fmt.Errorf("%w: %s: due_date", ErrInvalidState, RuleRequired)
	}
	if due.Before(borrow) {
		return violation(RuleDueAfterBorrow)
	}
	if returned != nil && returned.Before(borrow) {
		return violation(RuleReturnAfterBorrow)
	}
	return nil
}

// ValidateDueDate checks that a new loan is not already due in the past.
func ValidateDueDate(due, today Date) error {
	if due.IsZero() {
		return fmt.Errorf("%w: %s: due_date", ErrInvalidState, RuleRequired)
	}
	if due.Before(today) {
		return violation(RuleDueNotPast)
	}
	return nil
}

// ValidateStudent checks every column rule of a student row.
func ValidateStudent(s Student, today Date) error {
	if err := required("first_name", s.FirstName); err != nil {
		return err
	}
	if err := required("last_name", s.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(s.Email); err != nil {
		return err
	}
	if s.DateOfBirth != nil && s.DateOfBirth.After(today) {
		return violation(RuleBirthDate)
	}
	return nil
}

// ValidateCourse checks every column rule of a course row.
func ValidateCourse(c Course) error {
	if err := required("course_code", c.Code); err != nil {
		return err
	}
	if err := required("title", c.Title); err != nil {
		return err
	}
	if c.Credits <= 0 {
		return violation(RuleCredits)
	}
	return nil
}

// NormalizeGrade trims and upper-cases a grade code and validates its length.
func NormalizeGrade(grade string) (string, error) {
	g := strings.ToUpper(strings.TrimSpace(grade))
	if g == "" || len(g) > MaxGradeLength {
		return "", violation(RuleGrade)
	}
	return g, nil
}
