package domain

type BookStatus string

const (
	BookDraft     BookStatus = "DRAFT"
	BookPublished BookStatus = "PUBLISHED"
	BookArchived  BookStatus = "ARCHIVED"
)

// Book is the catalog view the engine needs: a price to snapshot and a
// status gate. Title/author ride along for display in admin listings.
type Book struct {
	ID         string
	Title      string
	Author     string
	PriceCents int64
	Status     BookStatus
}

// Purchasable reports whether new orders may reference this book.
func (b *Book) Purchasable() bool {
	return b.Status == BookPublished
}

// BookFile is one downloadable asset owned by exactly one book.
type BookFile struct {
	ID        string
	BookID    string
	FileType  string
	SizeBytes int64
}
