package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/evidenca/internal/store"
)

// EnrollmentsHandler handles enrollment and grading endpoints.
type EnrollmentsHandler struct {
	DB *sql.DB
}

type enrollRequest struct {
	StudentID      int64     `json:"student_id"`
	CourseID       int64     `json:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

type gradeRequest struct {
	Grade string `json:"grade"`
}

// Create handles POST /api/enrollments.
func (h *EnrollmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.StudentID <= 0 || req.CourseID <= 0 {
		jsonError(w, http.StatusBadRequest, "student_id and course_id are required and must be positive")
		return
	}

	enrollment, err := store.Enroll(r.Context(), h.DB, req.StudentID, req.CourseID, req.EnrollmentDate)
	if err != nil {
		writeError(w, r, "enroll", err)
		return
	}

	requestLogger(r.Context()).Info("student enrolled",
		"enrollment", enrollment.ID, "student", enrollment.StudentID, "course", enrollment.CourseID)
	jsonResponse(w, http.StatusCreated, enrollment)
}

// List handles GET /api/enrollments?student_id=&course_id=.
func (h *EnrollmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, ok := queryID(r, "student_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student_id")
		return
	}
	courseID, ok := queryID(r, "course_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid course_id")
		return
	}

	enrollments, err := store.ListEnrollments(r.Context(), h.DB, studentID, courseID)
	if err != nil {
		writeError(w, r, "list enrollments", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(enrollments))
}

// Get handles GET /api/enrollments/{id}.
func (h *EnrollmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	enrollment, err := store.GetEnrollment(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get enrollment", err)
		return
	}
	jsonResponse(w, http.StatusOK, enrollment)
}

// Update handles PUT /api/enrollments/{id}.
func (h *EnrollmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudentID <= 0 || req.CourseID <= 0 {
		jsonError(w, http.StatusBadRequest, "student_id and course_id are required and must be positive")
		return
	}

	enrollment, err := store.UpdateEnrollment(r.Context(), h.DB, id, req.StudentID, req.CourseID)
	if err != nil {
		writeError(w, r, "update enrollment", err)
		return
	}

	requestLogger(r.Context()).Info("enrollment updated",
		"enrollment", id, "student", enrollment.StudentID, "course", enrollment.CourseID)
	jsonResponse(w, http.StatusOK, enrollment)
}

// Delete handles DELETE /api/enrollments/{id}.
func (h *EnrollmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	if err := store.DeleteEnrollment(r.Context(), h.DB, id); err != nil {
		writeError(w, r, "withdraw", err)
		return
	}

	requestLogger(r.Context()).Info("student withdrawn", "enrollment", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "enrollment deleted"})
}

// AssignGrade handles PUT /api/enrollments/{id}/grade.
func (h *EnrollmentsHandler) AssignGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enrollment, err := store.AssignGrade(r.Context(), h.DB, id, req.Grade)
	if err != nil {
		writeError(w, r, "assign grade", err)
		return
	}

	requestLogger(r.Context()).Info("grade assigned", "enrollment", id, "grade", *enrollment.Grade)
	jsonResponse(w, http.StatusOK, enrollment)
}

// ClearGrade handles DELETE /api/enrollments/{id}/grade.
func (h *EnrollmentsHandler) ClearGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid enrollment id")
		return
	}

	enrollment, err := store.ClearGrade(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "clear grade", err)
		return
	}

	requestLogger(r.Context()).Info("grade cleared", "enrollment", id)
	jsonResponse(w, http.StatusOK, enrollment)
}
