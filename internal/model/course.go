package model

import "time"

// Course is a unit of study students enroll in.
type Course struct {
	ID          int64     `json:"course_id" db:"course_id"`
	Code        string    `json:"course_code" db:"course_code"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Credits     int       `json:"credits" db:"credits"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
