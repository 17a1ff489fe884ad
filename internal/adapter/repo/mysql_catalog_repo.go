package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
)

// MySQLCatalogRepo is the read-only view of the catalog tables this engine
// consumes. Catalog management (uploads, edits) belongs to another service;
// this adapter only answers the two lookups the ports require.
type MySQLCatalogRepo struct{ db *sql.DB }

func NewMySQLCatalogRepo(db *sql.DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

func (r *MySQLCatalogRepo) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	var status string
	err := r.db.QueryRowContext(ctx, `
SELECT id, title, author, price_cents, status FROM books WHERE id=?`, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.PriceCents, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	b.Status = domain.BookStatus(status)
	return &b, nil
}

func (r *MySQLCatalogRepo) GetBookFile(ctx context.Context, id string) (*domain.BookFile, error) {
	var f domain.BookFile
	err := r.db.QueryRowContext(ctx, `
SELECT id, book_id, file_type, size_bytes FROM book_files WHERE id=?`, id,
	).Scan(&f.ID, &f.BookID, &f.FileType, &f.SizeBytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

var _ usecase.Catalog = (*MySQLCatalogRepo)(nil)
