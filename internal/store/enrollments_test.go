package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

func newStudent(t *testing.T, database *sql.DB, email string) *model.Student {
	t.Helper()
	s, err := CreateStudent(context.Background(), database, model.Student{
		FirstName: "Ivan", LastName: "Horvat", Email: email,
	}, march10)
	require.NoError(t, err)
	return s
}

func newCourse(t *testing.T, database *sql.DB, code string) *model.Course {
	t.Helper()
	c, err := CreateCourse(context.Background(), database, model.Course{
		Code: code, Title: "Course " + code, Credits: 6,
	})
	require.NoError(t, err)
	return c
}

func TestEnrollDefaultsDateAndNullGrade(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")

	e, err := Enroll(ctx, database, s.ID, c.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, s.ID, e.StudentID)
	assert.Equal(t, c.ID, e.CourseID)
	assert.Nil(t, e.Grade)
	assert.False(t, e.EnrollmentDate.IsZero())
}

func TestEnrollExplicitDate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")

	at := time.Date(2023, time.October, 2, 9, 30, 0, 0, time.UTC)
	e, err := Enroll(ctx, database, s.ID, c.ID, at)
	require.NoError(t, err)
	assert.True(t, e.EnrollmentDate.Equal(at), "got %v", e.EnrollmentDate)
}

func TestEnrollTwiceConflicts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")

	_, err := Enroll(ctx, database, s.ID, c.ID, time.Time{})
	require.NoError(t, err)

	_, err = Enroll(ctx, database, s.ID, c.ID, time.Time{})
	assert.ErrorIs(t, err, model.ErrConflict)

	all, err := ListEnrollments(ctx, database, s.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnrollMissingParents(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")

	_, err := Enroll(ctx, database, 999, c.ID, time.Time{})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = Enroll(ctx, database, s.ID, 999, time.Time{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConcurrentDuplicateEnroll(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")

	results := make([]error, 5)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = Enroll(ctx, database, s.ID, c.ID, time.Time{})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, model.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
}

func TestAssignGradeReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	c := newCourse(t, database, "CS101")
	e, err := Enroll(ctx, database, s.ID, c.ID, time.Time{})
	require.NoError(t, err)

	graded, err := AssignGrade(ctx, database, e.ID, "b+")
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, "B+", *graded.Grade)

	graded, err = AssignGrade(ctx, database, e.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", *graded.Grade)

	// Assigning the same grade again is fine.
	_, err = AssignGrade(ctx, database, e.ID, "A")
	assert.NoError(t, err)

	_, err = AssignGrade(ctx, database, e.ID, "ABC")
	assert.ErrorIs(t, err, model.ErrInvalidState)

	cleared, err := ClearGrade(ctx, database, e.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Grade)
}

func TestAssignGradeUnknownEnrollment(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := AssignGrade(context.Background(), database, 77, "A")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateEnrollment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := newStudent(t, database, "ivan@example.com")
	cs101 := newCourse(t, database, "CS101")
	cs102 := newCourse(t, database, "CS102")

	e1, err := Enroll(ctx, database, s.ID, cs101.ID, time.Time{})
	require.NoError(t, err)
	e2, err := Enroll(ctx, database, s.ID, cs102.ID, time.Time{})
	require.NoError(t, err)

	_, err = UpdateEnrollment(ctx, database, e2.ID, s.ID, cs101.ID)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = UpdateEnrollment(ctx, database, e2.ID, s.ID, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, DeleteEnrollment(ctx, database, e1.ID))
	moved, err := UpdateEnrollment(ctx, database, e2.ID, s.ID, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, cs101.ID, moved.CourseID)

	assert.ErrorIs(t, DeleteEnrollment(ctx, database, e1.ID), model.ErrNotFound)
}

func TestDeleteStudentCascadesEnrollments(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ivan := newStudent(t, database, "ivan@example.com")
	maja := newStudent(t, database, "maja@example.com")
	cs101 := newCourse(t, database, "CS101")
	cs102 := newCourse(t, database, "CS102")

	for _, c := range []*model.Course{cs101, cs102} {
		_, err := Enroll(ctx, database, ivan.ID, c.ID, time.Time{})
		require.NoError(t, err)
	}
	_, err := Enroll(ctx, database, maja.ID, cs101.ID, time.Time{})
	require.NoError(t, err)

	removed, err := DeleteStudent(ctx, database, ivan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := ListEnrollments(ctx, database, 0, 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, maja.ID, left[0].StudentID)

	_, err = DeleteStudent(ctx, database, ivan.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteCourseCascadesEnrollments(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ivan := newStudent(t, database, "ivan@example.com")
	maja := newStudent(t, database, "maja@example.com")
	c := newCourse(t, database, "CS101")

	for _, s := range []*model.Student{ivan, maja} {
		_, err := Enroll(ctx, database, s.ID, c.ID, time.Time{})
		require.NoError(t, err)
	}

	removed, err := DeleteCourse(ctx, database, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := ListEnrollments(ctx, database, 0, c.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
