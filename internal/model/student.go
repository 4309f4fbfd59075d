package model

import "time"

// Student is an enrolled person on the academic side.
type Student struct {
	ID          int64     `json:"student_id" db:"student_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	DateOfBirth *Date     `json:"date_of_birth,omitempty" db:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
