package model

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestValidateCopies(t *testing.T) {
	tests := []struct {
		available, total int
		wantErr          bool
	}{
		{0, 0, false},
		{1, 1, false},
		{2, 3, false},
		{0, 3, false},
		{4, 3, true},
		{-1, 3, true},
		{0, -1, true},
	}

	for _, tt := range tests {
		err := ValidateCopies(tt.available, tt.total)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCopies(%d, %d) error = %v, wantErr %v", tt.available, tt.total, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidState) {
			t.Errorf("ValidateCopies(%d, %d) = %v, want ErrInvalidState", tt.available, tt.total, err)
		}
	}
}

func TestValidateBook(t *testing.T) {
	ok := Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 2, AvailableCopies: 2}
	if err := ValidateBook(ok); err != nil {
		t.Fatalf("ValidateBook(valid) = %v", err)
	}

	tests := []struct {
		name string
		edit func(*Book)
	}{
		{"blank title", func(b *Book) { b.Title = "  " }},
		{"blank author", func(b *Book) { b.Author = "" }},
		{"bad year", func(b *Book) { b.PublicationYear = intPtr(0) }},
		{"available above total", func(b *Book) { b.AvailableCopies = 3 }},
	}
	for _, tt := range tests {
		b := ok
		tt.edit(&b)
		if err := ValidateBook(b); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s: got %v, want ErrInvalidState", tt.name, err)
		}
	}
}

func TestValidateMember(t *testing.T) {
	m := Member{FirstName: "Ana", LastName: "Novak", Email: "ana@example.com", Status: MembershipActive}
	if err := ValidateMember(m); err != nil {
		t.Fatalf("ValidateMember(valid) = %v", err)
	}

	bad := m
	bad.Status = "Banned"
	if err := ValidateMember(bad); !errors.Is(err, ErrInvalidState) {
		t.Errorf("unknown status: got %v, want ErrInvalidState", err)
	}

	bad = m
	bad.Email = "Ana <ana@example.com>"
	if err := ValidateMember(bad); !errors.Is(err, ErrInvalidState) {
		t.Errorf("display-name email: got %v, want ErrInvalidState", err)
	}
}

func TestMembershipStatus(t *testing.T) {
	tests := []struct {
		status    MembershipStatus
		valid     bool
		canBorrow bool
	}{
		{MembershipActive, true, true},
		{MembershipExpired, true, false},
		{MembershipSuspended, true, false},
		{"active", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.status, got, tt.valid)
		}
		if got := tt.status.CanBorrow(); got != tt.canBorrow {
			t.Errorf("%q.CanBorrow() = %v, want %v", tt.status, got, tt.canBorrow)
		}
	}
}

func TestValidateBorrowingDates(t *testing.T) {
	borrow := NewDate(2024, time.March, 10)
	due := NewDate(2024, time.March, 24)
	early := NewDate(2024, time.March, 9)
	late := NewDate(2024, time.April, 1)

	if err := ValidateBorrowingDates(borrow, due, nil); err != nil {
		t.Errorf("open borrowing: %v", err)
	}
	if err := ValidateBorrowingDates(borrow, due, &late); err != nil {
		t.Errorf("late return: %v", err)
	}
	if err := ValidateBorrowingDates(borrow, borrow, &borrow); err != nil {
		t.Errorf("same-day loan: %v", err)
	}
	if err := ValidateBorrowingDates(borrow, early, nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("due before borrow: got %v", err)
	}
	if err := ValidateBorrowingDates(borrow, due, &early); !errors.Is(err, ErrInvalidState) {
		t.Errorf("return before borrow: got %v", err)
	}
}

func TestValidateDueDate(t *testing.T) {
	today := NewDate(2024, time.March, 10)
	if err := ValidateDueDate(today, today); err != nil {
		t.Errorf("due today: %v", err)
	}
	if err := ValidateDueDate(today.AddDays(-1), today); !errors.Is(err, ErrInvalidState) {
		t.Errorf("due yesterday: got %v", err)
	}
	if err := ValidateDueDate(Date{}, today); !errors.Is(err, ErrInvalidState) {
		t.Errorf("missing due date: got %v", err)
	}
}

func TestValidateCourse(t *testing.T) {
	c := Course{Code: "CS101", Title: "Intro", Credits: 3}
	if err := ValidateCourse(c); err != nil {
		t.Fatalf("ValidateCourse(valid) = %v", err)
	}
	c.Credits = 0
	if err := ValidateCourse(c); !errors.Is(err, ErrInvalidState) {
		t.Errorf("zero credits: got %v", err)
	}
}

func TestValidateStudentBirthDate(t *testing.T) {
	today := NewDate(2024, time.March, 10)
	future := today.AddDays(1)
	s := Student{FirstName: "Ivan", LastName: "Horvat", Email: "ivan@example.com", DateOfBirth: &future}
	if err := ValidateStudent(s, today); !errors.Is(err, ErrInvalidState) {
		t.Errorf("future birth date: got %v", err)
	}
	s.DateOfBirth = nil
	if err := ValidateStudent(s, today); err != nil {
		t.Errorf("no birth date: %v", err)
	}
}

func TestNormalizeGrade(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"A", "A", false},
		{" b+ ", "B+", false},
		{"", "", true},
		{"ABC", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeGrade(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeGrade(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeGrade(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
