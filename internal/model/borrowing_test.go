package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClassifyBorrowing(t *testing.T) {
	due := NewDate(2024, time.March, 24)
	early := NewDate(2024, time.March, 20)
	late := NewDate(2024, time.March, 26)

	tests := []struct {
		name     string
		returned *Date
		today    Date
		want     BorrowingStatus
	}{
		{"open before due", nil, NewDate(2024, time.March, 20), BorrowingCurrent},
		{"open on due date", nil, due, BorrowingCurrent},
		{"open past due", nil, NewDate(2024, time.March, 30), BorrowingOverdue},
		{"returned early", &early, NewDate(2024, time.March, 30), BorrowingReturnedOnTime},
		{"returned on due date", &due, NewDate(2024, time.March, 30), BorrowingReturnedOnTime},
		{"returned late", &late, NewDate(2024, time.March, 30), BorrowingReturnedLate},
	}

	for _, tt := range tests {
		got := ClassifyBorrowing(due, tt.returned, tt.today)
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOverdueScenario(t *testing.T) {
	b := Borrowing{
		BorrowDate: NewDate(2024, time.March, 10),
		DueDate:    NewDate(2024, time.March, 24),
	}
	today := NewDate(2024, time.March, 30)

	if got := b.Status(today); got != BorrowingOverdue {
		t.Errorf("status = %q, want %q", got, BorrowingOverdue)
	}
	if got := DaysOverdue(b.DueDate, today); got != 6 {
		t.Errorf("days overdue = %d, want 6", got)
	}
	if got := DaysOverdue(b.DueDate, b.DueDate); got != 0 {
		t.Errorf("days overdue on due date = %d, want 0", got)
	}
}

func TestDateScanAndJSON(t *testing.T) {
	var d Date
	if err := d.Scan("2024-03-10"); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if d.String() != "2024-03-10" {
		t.Errorf("String() = %q", d.String())
	}

	if err := d.Scan(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan time: %v", err)
	}
	if d.String() != "2024-03-11" {
		t.Errorf("String() after time scan = %q", d.String())
	}

	if err := d.Scan([]byte("2024-03-12 00:00:00")); err != nil {
		t.Fatalf("Scan datetime text: %v", err)
	}
	if d.String() != "2024-03-12" {
		t.Errorf("String() after datetime scan = %q", d.String())
	}

	v, err := d.Value()
	if err != nil || v != "2024-03-12" {
		t.Errorf("Value() = %v, %v", v, err)
	}

	data, _ := json.Marshal(struct {
		D Date  `json:"d"`
		R *Date `json:"r"`
	}{D: d})
	if string(data) != `{"d":"2024-03-12","r":null}` {
		t.Errorf("json = %s", data)
	}

	var back struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.D.Equal(NewDate(2024, time.February, 29)) {
		t.Errorf("unmarshalled %v", back.D)
	}
	if err := json.Unmarshal([]byte(`{"d":"29/02/2024"}`), &back); err == nil {
		t.Error("expected error for bad date format")
	}
}
