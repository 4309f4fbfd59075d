package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

const courseColumns = `course_id, course_code, title, description, credits, created_at`

// CreateCourse adds a course. Course codes are unique.
func CreateCourse(ctx context.Context, database *sql.DB, c model.Course) (*model.Course, error) {
	if err := model.ValidateCourse(c); err != nil {
		return nil, fmt.Errorf("creating course: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`INSERT INTO courses (course_code, title, description, credits) VALUES (?, ?, ?, ?)`,
		c.Code, c.Title, nullString(c.Description), c.Credits,
	)
	if err != nil {
		return nil, db.Classify(err, "creating course")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting course id: %w", err)
	}

	return GetCourse(ctx, database, id)
}

// GetCourse returns a course by ID.
func GetCourse(ctx context.Context, database *sql.DB, id int64) (*model.Course, error) {
	row := database.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE course_id = ?`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, notFound("course", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting course: %w", err)
	}
	return c, nil
}

// ListCourses returns all courses ordered by code.
func ListCourses(ctx context.Context, database *sql.DB) ([]model.Course, error) {
	rows, err := database.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY course_code`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// UpdateCourse replaces a course's details.
func UpdateCourse(ctx context.Context, database *sql.DB, id int64, c model.Course) (*model.Course, error) {
	if err := model.ValidateCourse(c); err != nil {
		return nil, fmt.Errorf("updating course: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`UPDATE courses SET course_code = ?, title = ?, description = ?, credits = ? WHERE course_id = ?`,
		c.Code, c.Title, nullString(c.Description), c.Credits, id,
	)
	if err != nil {
		return nil, db.Classify(err, "updating course")
	}
	if err := expectOne(result, "course", id); err != nil {
		return nil, err
	}
	return GetCourse(ctx, database, id)
}

// DeleteCourse removes a course and every enrollment in it. It returns
// how many enrollments were removed.
func DeleteCourse(ctx context.Context, database *sql.DB, id int64) (int, error) {
	return deleteWithEnrollments(ctx, database, "courses", "course_id", "course", id)
}

func scanCourse(s rowScanner) (*model.Course, error) {
	c := &model.Course{}
	var description sql.NullString
	if err := s.Scan(&c.ID, &c.Code, &c.Title, &description, &c.Credits, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Description = description.String
	return c, nil
}
