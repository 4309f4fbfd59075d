package model

import "time"

// Enrollment ties a student to a course. The (StudentID, CourseID) pair is
// unique, and enrollments are deleted together with either parent.
type Enrollment struct {
	ID             int64     `json:"enrollment_id" db:"enrollment_id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	CourseID       int64     `json:"course_id" db:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date" db:"enrollment_date"`
	Grade          *string   `json:"grade" db:"grade"`
}
