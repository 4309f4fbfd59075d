package api

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

// BorrowingsHandler handles checkout, return and borrowing lookups.
type BorrowingsHandler struct {
	DB       *sql.DB
	LoanDays int
	Today    func() model.Date
}

type checkoutRequest struct {
	BookID   int64      `json:"book_id"`
	MemberID int64      `json:"member_id"`
	DueDate  model.Date `json:"due_date"`
}

type returnRequest struct {
	ReturnDate model.Date `json:"return_date"`
}

// Checkout handles POST /api/borrowings. A missing due_date defaults to
// the configured loan period.
func (h *BorrowingsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookID <= 0 || req.MemberID <= 0 {
		jsonError(w, http.StatusBadRequest, "book_id and member_id are required and must be positive")
		return
	}

	today := h.Today()
	due := req.DueDate
	if due.IsZero() {
		due = today.AddDays(h.LoanDays)
	}

	borrowing, err := store.Checkout(r.Context(), h.DB, req.BookID, req.MemberID, due, today)
	if err != nil {
		writeError(w, r, "checkout", err)
		return
	}

	requestLogger(r.Context()).Info("book checked out",
		"borrowing", borrowing.ID, "book", borrowing.BookID,
		"member", borrowing.MemberID, "due", borrowing.DueDate)
	jsonResponse(w, http.StatusCreated, borrowing)
}

// Return handles POST /api/borrowings/{id}/return. The body is optional;
// a missing return_date means today.
func (h *BorrowingsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid borrowing id")
		return
	}

	var req returnRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	returned := req.ReturnDate
	if returned.IsZero() {
		returned = h.Today()
	}

	borrowing, err := store.ReturnBook(r.Context(), h.DB, id, returned)
	if err != nil {
		writeError(w, r, "return", err)
		return
	}

	requestLogger(r.Context()).Info("book returned",
		"borrowing", borrowing.ID, "book", borrowing.BookID,
		"status", borrowing.Status(h.Today()))
	jsonResponse(w, http.StatusOK, borrowing)
}

// Get handles GET /api/borrowings/{id}.
func (h *BorrowingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid borrowing id")
		return
	}

	borrowing, err := store.GetBorrowing(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get borrowing", err)
		return
	}
	jsonResponse(w, http.StatusOK, borrowing)
}

// List handles GET /api/borrowings?member_id=&book_id=&open=.
func (h *BorrowingsHandler) List(w http.ResponseWriter, r *http.Request) {
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
	if v := r.URL.Query().Get("open"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid open")
			return
		}
		filter.OpenOnly = open
	}

	h.list(w, r, filter)
}

// ListForBook handles GET /api/books/{id}/borrowings.
func (h *BorrowingsHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}
	if _, err := store.GetBook(r.Context(), h.DB, id); err != nil {
		writeError(w, r, "list book borrowings", err)
		return
	}

	h.list(w, r, model.BorrowingFilter{BookID: id})
}

func (h *BorrowingsHandler) list(w http.ResponseWriter, r *http.Request, filter model.BorrowingFilter) {
	borrowings, err := store.ListBorrowings(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, "list borrowings", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(borrowings))
}
