package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/evidenca/internal/model"
)

// Options configures the request layer.
type Options struct {
	// LoanDays sets the due date of a checkout that does not name one.
	LoanDays int
	// Today returns the current calendar date. Defaults to model.Today.
	Today func() model.Date
}

// NewRouter creates the API router with all endpoints registered, wrapped
// in request id and access log middleware.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	if opts.LoanDays <= 0 {
		opts.LoanDays = 14
	}
	if opts.Today == nil {
		opts.Today = model.Today
	}

	mux := http.NewServeMux()

	books := &BooksHandler{DB: db}
	members := &MembersHandler{DB: db}
	borrowings := &BorrowingsHandler{DB: db, LoanDays: opts.LoanDays, Today: opts.Today}
	students := &StudentsHandler{DB: db, Today: opts.Today}
	courses := &CoursesHandler{DB: db}
	enrollments := &EnrollmentsHandler{DB: db}
	reports := &ReportsHandler{DB: db, Today: opts.Today}

	// Books.
	mux.HandleFunc("GET /api/books", books.List)
	mux.HandleFunc("POST /api/books", books.Create)
	mux.HandleFunc("GET /api/books/{id}", books.Get)
	mux.HandleFunc("PUT /api/books/{id}", books.Update)
	mux.HandleFunc("DELETE /api/books/{id}", books.Delete)
	mux.HandleFunc("PUT /api/books/{id}/cover", books.UploadCover)
	mux.HandleFunc("GET /api/books/{id}/cover", books.GetCover)
	mux.HandleFunc("GET /api/books/{id}/borrowings", borrowings.ListForBook)

	// Members.
	mux.HandleFunc("GET /api/members", members.List)
	mux.HandleFunc("POST /api/members", members.Create)
	mux.HandleFunc("GET /api/members/{id}", members.Get)
	mux.HandleFunc("PUT /api/members/{id}", members.Update)
	mux.HandleFunc("DELETE /api/members/{id}", members.Delete)
	mux.HandleFunc("PUT /api/members/{id}/status", members.UpdateStatus)
	mux.HandleFunc("GET /api/members/{id}/history", reports.History)

	// Borrowings.
	mux.HandleFunc("POST /api/borrowings", borrowings.Checkout)
	mux.HandleFunc("GET /api/borrowings", borrowings.List)
	mux.HandleFunc("GET /api/borrowings/{id}", borrowings.Get)
	mux.HandleFunc("POST /api/borrowings/{id}/return", borrowings.Return)

	// Students and courses.
	mux.HandleFunc("GET /api/students", students.List)
	mux.HandleFunc("POST /api/students", students.Create)
	mux.HandleFunc("GET /api/students/{id}", students.Get)
	mux.HandleFunc("PUT /api/students/{id}", students.Update)
	mux.HandleFunc("DELETE /api/students/{id}", students.Delete)
	mux.HandleFunc("GET /api/students/{id}/courses", reports.StudentCourses)

	mux.HandleFunc("GET /api/courses", courses.List)
	mux.HandleFunc("POST /api/courses", courses.Create)
	mux.HandleFunc("GET /api/courses/{id}", courses.Get)
	mux.HandleFunc("PUT /api/courses/{id}", courses.Update)
	mux.HandleFunc("DELETE /api/courses/{id}", courses.Delete)
	mux.HandleFunc("GET /api/courses/{id}/students", reports.CourseStudents)

	// Enrollments.
	mux.HandleFunc("POST /api/enrollments", enrollments.Create)
	mux.HandleFunc("GET /api/enrollments", enrollments.List)
	mux.HandleFunc("GET /api/enrollments/{id}", enrollments.Get)
	mux.HandleFunc("PUT /api/enrollments/{id}", enrollments.Update)
	mux.HandleFunc("DELETE /api/enrollments/{id}", enrollments.Delete)
	mux.HandleFunc("PUT /api/enrollments/{id}/grade", enrollments.AssignGrade)
	mux.HandleFunc("DELETE /api/enrollments/{id}/grade", enrollments.ClearGrade)

	// Reports.
	mux.HandleFunc("GET /api/reports/overdue", reports.Overdue)
	mux.HandleFunc("GET /api/reports/availability", reports.Availability)
	mux.HandleFunc("GET /api/reports/open-borrowings", reports.OpenBorrowings)

	return RequestIDMiddleware(LoggingMiddleware(mux))
}
