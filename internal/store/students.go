package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

const studentColumns = `student_id, first_name, last_name, email, date_of_birth, created_at`

// CreateStudent registers a student.
func CreateStudent(ctx context.Context, database *sql.DB, s model.Student, today model.Date) (*model.Student, error) {
	if err := model.ValidateStudent(s, today); err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`INSERT INTO students (first_name, last_name, email, date_of_birth) VALUES (?, ?, ?, ?)`,
		s.FirstName, s.LastName, s.Email, s.DateOfBirth,
	)
	if err != nil {
		return nil, db.Classify(err, "creating student")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting student id: %w", err)
	}

	return GetStudent(ctx, database, id)
}

// GetStudent returns a student by ID.
func GetStudent(ctx context.Context, database *sql.DB, id int64) (*model.Student, error) {
	s := &model.Student{}
	err := database.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_id = ?`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.DateOfBirth, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("student", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting student: %w", err)
	}
	return s, nil
}

// ListStudents returns all students.
func ListStudents(ctx context.Context, database *sql.DB) ([]model.Student, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY last_name, first_name, student_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.DateOfBirth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// UpdateStudent replaces a student's details.
func UpdateStudent(ctx context.Context, database *sql.DB, id int64, s model.Student, today model.Date) (*model.Student, error) {
	if err := model.ValidateStudent(s, today); err != nil {
		return nil, fmt.Errorf("updating student: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`UPDATE students SET first_name = ?, last_name = ?, email = ?, date_of_birth = ?
		 WHERE student_id = ?`,
		s.FirstName, s.LastName, s.Email, s.DateOfBirth, id,
	)
	if err != nil {
		return nil, db.Classify(err, "updating student")
	}
	if err := expectOne(result, "student", id); err != nil {
		return nil, err
	}
	return GetStudent(ctx, database, id)
}

// DeleteStudent removes a student and all of their enrollments. It
// returns how many enrollments went with them.
func DeleteStudent(ctx context.Context, database *sql.DB, id int64) (int, error) {
	return deleteWithEnrollments(ctx, database, "students", "student_id", "student", id)
}

// deleteWithEnrollments removes a student or course row. The schema
// cascades the delete to enrollments; the count is taken in the same
// transaction so it matches what was removed.
func deleteWithEnrollments(ctx context.Context, database *sql.DB, table, column, kind string, id int64) (int, error) {
	var removed int
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM enrollments WHERE %s = ?`, column), id,
		).Scan(&removed)
		if err != nil {
			return fmt.Errorf("counting enrollments: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, column), id,
		)
		if err != nil {
			return db.Classify(err, "deleting "+kind)
		}
		return expectOne(result, kind, id)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
