package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

// StudentsHandler handles student endpoints.
type StudentsHandler struct {
	DB    *sql.DB
	Today func() model.Date
}

type studentRequest struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	DateOfBirth *model.Date `json:"date_of_birth"`
}

func (req studentRequest) student() model.Student {
	s := model.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.DateOfBirth != nil && !req.DateOfBirth.IsZero() {
		s.DateOfBirth = req.DateOfBirth
	}
	return s
}

// List handles GET /api/students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := store.ListStudents(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, "list students", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(students))
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := store.CreateStudent(r.Context(), h.DB, req.student(), h.Today())
	if err != nil {
		writeError(w, r, "create student", err)
		return
	}

	requestLogger(r.Context()).Info("student created", "student", student.ID)
	jsonResponse(w, http.StatusCreated, student)
}

// Get handles GET /api/students/{id}.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	student, err := store.GetStudent(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get student", err)
		return
	}
	jsonResponse(w, http.StatusOK, student)
}

// Update handles PUT /api/students/{id}.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := store.UpdateStudent(r.Context(), h.DB, id, req.student(), h.Today())
	if err != nil {
		writeError(w, r, "update student", err)
		return
	}

	requestLogger(r.Context()).Info("student updated", "student", id)
	jsonResponse(w, http.StatusOK, student)
}

// Delete handles DELETE /api/students/{id}. The student's enrollments are
// removed with them.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	removed, err := store.DeleteStudent(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "delete student", err)
		return
	}

	requestLogger(r.Context()).Info("student deleted", "student", id, "enrollments_removed", removed)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":             "student deleted",
		"enrollments_removed": removed,
	})
}
