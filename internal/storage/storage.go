// Package storage defines the storage contracts the HTTP layer depends on,
// plus the sentinel errors every backend reports.
//
// Handlers only know these interfaces. Backends (memory, sqlite, postgres)
// are chosen once in main.go from the configuration, so switching a
// backend never touches a handler, and tests can pass an isolated
// in-memory instance.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/google/uuid"
)

// Sentinel errors. Backends wrap them with the offending id or criteria,
// so callers match with errors.Is and still get a descriptive message.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// BookStorage is the contract for the book collection.
type BookStorage interface {
	// CreateBook appends a book. A nil ID is replaced with a freshly
	// generated one; the stored book is returned.
	CreateBook(ctx context.Context, book types.Book) (types.Book, error)

	// GetBooks returns every book in insertion order.
	// Returns an empty slice (not nil) when there are no books.
	GetBooks(ctx context.Context) ([]types.Book, error)

	// GetBookByID returns the first book with the given id.
	GetBookByID(ctx context.Context, id uuid.UUID) (types.Book, error)

	// UpdateBookByID replaces the whole book stored under id.
	// The id itself never changes.
	UpdateBookByID(ctx context.Context, id uuid.UUID, book types.Book) (types.Book, error)

	// DeleteBookByID removes the first book with the given id and returns it.
	DeleteBookByID(ctx context.Context, id uuid.UUID) (types.Book, error)

	// SearchBooks returns the books matching every non-empty filter field.
	// Zero matches is reported as ErrNotFound, not as an empty slice.
	SearchBooks(ctx context.Context, filter types.BookFilter) ([]types.Book, error)
}

// ProductStorage is the contract for the product catalog.
type ProductStorage interface {
	CreateProduct(ctx context.Context, product types.Product) (types.Product, error)
	GetProducts(ctx context.Context) ([]types.Product, error)
	GetProductByID(ctx context.Context, id int) (types.Product, error)
}
