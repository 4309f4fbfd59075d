package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/evidenca/internal/imaging"
	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

// BooksHandler handles book catalog endpoints.
type BooksHandler struct {
	DB *sql.DB
}

type bookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear *int   `json:"publication_year"`
	Genre           string `json:"genre"`
	TotalCopies     *int   `json:"total_copies"`
	AvailableCopies *int   `json:"available_copies"`
}

func (req bookRequest) book() model.Book {
	b := model.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		TotalCopies:     1,
	}
	if req.TotalCopies != nil {
		b.TotalCopies = *req.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if req.AvailableCopies != nil {
		b.AvailableCopies = *req.AvailableCopies
	}
	return b
}

// List handles GET /api/books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.BookFilter{
		Author: q.Get("author"),
		Genre:  q.Get("genre"),
		Title:  q.Get("title"),
	}
	if v := q.Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid in_stock")
			return
		}
		filter.OnlyInStock = inStock
	}

	books, err := store.ListBooks(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, "list books", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(books))
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, req.book())
	if err != nil {
		writeError(w, r, "create book", err)
		return
	}

	requestLogger(r.Context()).Info("book created", "book", book.ID, "title", book.Title, "copies", book.TotalCopies)
	jsonResponse(w, http.StatusCreated, book)
}

// Get handles GET /api/books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get book", err)
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{id}. Copies on loan stay on loan when
// total_copies changes.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalCopies == nil {
		jsonError(w, http.StatusBadRequest, "total_copies required")
		return
	}

	book, err := store.UpdateBook(r.Context(), h.DB, id, req.book())
	if err != nil {
		writeError(w, r, "update book", err)
		return
	}

	requestLogger(r.Context()).Info("book updated", "book", id, "copies", book.TotalCopies, "available", book.AvailableCopies)
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := store.DeleteBook(r.Context(), h.DB, id); err != nil {
		writeError(w, r, "delete book", err)
		return
	}

	requestLogger(r.Context()).Info("book deleted", "book", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if err != nil {
		writeError(w, r, "process cover", err)
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, id, cover.Data, cover.MIME); err != nil {
		writeError(w, r, "save cover", err)
		return
	}

	requestLogger(r.Context()).Info("book cover uploaded", "book", id, "width", cover.Width, "height", cover.Height, "bytes", len(cover.Data))
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "cover uploaded",
		"width":   cover.Width,
		"height":  cover.Height,
	})
}

// GetCover handles GET /api/books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get cover", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
