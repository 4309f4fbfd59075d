package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

// CoursesHandler handles course endpoints.
type CoursesHandler struct {
	DB *sql.DB
}

type courseRequest struct {
	Code        string `json:"course_code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Credits     int    `json:"credits"`
}

func (req courseRequest) course() model.Course {
	return model.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Credits:     req.Credits,
	}
}

// List handles GET /api/courses.
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := store.ListCourses(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, "list courses", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(courses))
}

// Create handles POST /api/courses.
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := store.CreateCourse(r.Context(), h.DB, req.course())
	if err != nil {
		writeError(w, r, "create course", err)
		return
	}

	requestLogger(r.Context()).Info("course created", "course", course.ID, "code", course.Code)
	jsonResponse(w, http.StatusCreated, course)
}

// Get handles GET /api/courses/{id}.
func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := store.GetCourse(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get course", err)
		return
	}
	jsonResponse(w, http.StatusOK, course)
}

// Update handles PUT /api/courses/{id}.
func (h *CoursesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := store.UpdateCourse(r.Context(), h.DB, id, req.course())
	if err != nil {
		writeError(w, r, "update course", err)
		return
	}

	requestLogger(r.Context()).Info("course updated", "course", id)
	jsonResponse(w, http.StatusOK, course)
}

// Delete handles DELETE /api/courses/{id}.
func (h *CoursesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	removed, err := store.DeleteCourse(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "delete course", err)
		return
	}

	requestLogger(r.Context()).Info("course deleted", "course", id, "enrollments_removed", removed)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":             "course deleted",
		"enrollments_removed": removed,
	})
}
