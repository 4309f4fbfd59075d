package model

// Book is a catalog entry. AvailableCopies is changed only by checkout
// and return; catalog edits to TotalCopies shift it by the same delta.
type Book struct {
	ID              int64  `json:"book_id" db:"book_id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	ISBN            string `json:"isbn,omitempty" db:"isbn"`
	PublicationYear *int   `json:"publication_year,omitempty" db:"publication_year"`
	Genre           string `json:"genre,omitempty" db:"genre"`
	TotalCopies     int    `json:"total_copies" db:"total_copies"`
	AvailableCopies int    `json:"available_copies" db:"available_copies"`
	CoverMime       string `json:"cover_mime,omitempty" db:"cover_mime"`
}

// OutOfStock reports whether every copy is lent out.
func (b Book) OutOfStock() bool {
	return b.AvailableCopies == 0
}

// BookFilter narrows ListBooks. Zero values match everything.
type BookFilter struct {
	Author      string
	Genre       string
	Title       string // substring match
	OnlyInStock bool
}
