package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

const enrollmentColumns = `enrollment_id, student_id, course_id, enrollment_date, grade`

// Enroll places a student in a course. A zero enrolledAt records the
// current time. Enrolling the same student in the same course twice fails
// with ErrConflict.
func Enroll(ctx context.Context, database *sql.DB, studentID, courseID int64, enrolledAt time.Time) (*model.Enrollment, error) {
	var id int64
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "students", "student_id", studentID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("student", studentID)
		}

		ok, err = exists(ctx, tx, "courses", "course_id", courseID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("course", courseID)
		}

		var existing int64
		err = tx.QueryRowContext(ctx,
			`SELECT enrollment_id FROM enrollments WHERE student_id = ? AND course_id = ?`,
			studentID, courseID,
		).Scan(&existing)
		if err == nil {
			return fmt.Errorf("%w: student %d is already enrolled in course %d (enrollment %d)",
				model.ErrConflict, studentID, courseID, existing)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking enrollment: %w", err)
		}

		var at any
		if !enrolledAt.IsZero() {
			at = enrolledAt.UTC()
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO enrollments (student_id, course_id, enrollment_date)
			 VALUES (?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
			studentID, courseID, at,
		)
		if err != nil {
			return db.Classify(err, "enrolling student")
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting enrollment id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetEnrollment(ctx, database, id)
}

// UpdateEnrollment moves an enrollment to another student or course. The
// new pair must exist and must not already be enrolled.
func UpdateEnrollment(ctx context.Context, database *sql.DB, id, studentID, courseID int64) (*model.Enrollment, error) {
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "enrollments", "enrollment_id", id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("enrollment", id)
		}

		ok, err = exists(ctx, tx, "students", "student_id", studentID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("student", studentID)
		}

		ok, err = exists(ctx, tx, "courses", "course_id", courseID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("course", courseID)
		}

		var other int64
		err = tx.QueryRowContext(ctx,
			`SELECT enrollment_id FROM enrollments
			 WHERE student_id = ? AND course_id = ? AND enrollment_id <> ?`,
			studentID, courseID, id,
		).Scan(&other)
		if err == nil {
			return fmt.Errorf("%w: student %d is already enrolled in course %d (enrollment %d)",
				model.ErrConflict, studentID, courseID, other)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking enrollment: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE enrollments SET student_id = ?, course_id = ? WHERE enrollment_id = ?`,
			studentID, courseID, id,
		)
		if err != nil {
			return db.Classify(err, "updating enrollment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetEnrollment(ctx, database, id)
}

// AssignGrade sets or replaces the grade of an enrollment.
func AssignGrade(ctx context.Context, database *sql.DB, enrollmentID int64, grade string) (*model.Enrollment, error) {
	g, err := model.NormalizeGrade(grade)
	if err != nil {
		return nil, fmt.Errorf("assigning grade: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`UPDATE enrollments SET grade = ? WHERE enrollment_id = ?`, g, enrollmentID,
	)
	if err != nil {
		return nil, db.Classify(err, "assigning grade")
	}
	if err := expectOne(result, "enrollment", enrollmentID); err != nil {
		return nil, err
	}
	return GetEnrollment(ctx, database, enrollmentID)
}

// ClearGrade removes the grade of an enrollment.
func ClearGrade(ctx context.Context, database *sql.DB, enrollmentID int64) (*model.Enrollment, error) {
	result, err := database.ExecContext(ctx,
		`UPDATE enrollments SET grade = NULL WHERE enrollment_id = ?`, enrollmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("clearing grade: %w", err)
	}
	if err := expectOne(result, "enrollment", enrollmentID); err != nil {
		return nil, err
	}
	return GetEnrollment(ctx, database, enrollmentID)
}

// GetEnrollment returns an enrollment by ID.
func GetEnrollment(ctx context.Context, database *sql.DB, id int64) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := database.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE enrollment_id = ?`, id,
	).Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &e.Grade)
	if err == sql.ErrNoRows {
		return nil, notFound("enrollment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting enrollment: %w", err)
	}
	return e, nil
}

// ListEnrollments returns enrollments, optionally narrowed to one student
// or one course. Zero IDs match everything.
func ListEnrollments(ctx context.Context, database *sql.DB, studentID, courseID int64) ([]model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE 1=1`
	var args []any

	if studentID != 0 {
		query += ` AND student_id = ?`
		args = append(args, studentID)
	}
	if courseID != 0 {
		query += ` AND course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY enrollment_date, enrollment_id`

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &e.Grade); err != nil {
			return nil, fmt.Errorf("scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// DeleteEnrollment withdraws a student from a single course.
func DeleteEnrollment(ctx context.Context, database *sql.DB, id int64) error {
	result, err := database.ExecContext(ctx, `DELETE FROM enrollments WHERE enrollment_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting enrollment: %w", err)
	}
	return expectOne(result, "enrollment", id)
}
