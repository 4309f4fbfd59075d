package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/report"
)

// ReportsHandler serves the read-only views.
type ReportsHandler struct {
	DB    *sql.DB
	Today func() model.Date
}

// asOf returns the ?as_of= date, or today when absent.
func (h *ReportsHandler) asOf(r *http.Request) (model.Date, error) {
	if v := r.URL.Query().Get("as_of"); v != "" {
		return model.ParseDate(v)
	}
	return h.Today(), nil
}

// Overdue handles GET /api/reports/overdue.
func (h *ReportsHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	today, err := h.asOf(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid as_of date")
		return
	}

	items, err := report.Overdue(r.Context(), h.DB, today)
	if err != nil {
		writeError(w, r, "overdue report", err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Availability handles GET /api/reports/availability.
func (h *ReportsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	rows, err := report.AvailabilityReport(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, "availability report", err)
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// History handles GET /api/members/{id}/history.
func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	today, err := h.asOf(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid as_of date")
		return
	}

	entries, err := report.BorrowingHistory(r.Context(), h.DB, id, today)
	if err != nil {
		writeError(w, r, "borrowing history", err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}

// StudentCourses handles GET /api/students/{id}/courses.
func (h *ReportsHandler) StudentCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	courses, err := report.StudentCourses(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "student courses", err)
		return
	}
	jsonResponse(w, http.StatusOK, courses)
}

// CourseStudents handles GET /api/courses/{id}/students.
func (h *ReportsHandler) CourseStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	students, err := report.CourseStudents(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "course students", err)
		return
	}
	jsonResponse(w, http.StatusOK, students)
}

// OpenBorrowings handles GET /api/reports/open-borrowings, soonest due first.
func (h *ReportsHandler) OpenBorrowings(w http.ResponseWriter, r *http.Request) {
	var filter model.BorrowingFilter
	var ok bool
	if filter.MemberID, ok = queryID(r, "member_id"); !ok {
		jsonError(w, http.StatusBadRequest, "invalid member_id")
		return
	}
	if filter.BookID, ok = queryID(r, "book_id"); !ok {
		jsonError(w, http.StatusBadRequest, "invalid book_id")
		return
	}

	borrowings, err := report.OpenBorrowings(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, "open borrowings", err)
		return
	}
	jsonResponse(w, http.StatusOK, borrowings)
}
