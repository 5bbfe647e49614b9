// Package memory provides process-local implementations of the storage
// contracts on top of records.Store. Nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/storage/records"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/google/uuid"
)

// BookStore implements storage.BookStorage in memory.
type BookStore struct {
	books *records.Store[uuid.UUID, types.Book]
	newID func() uuid.UUID
}

// NewBookStore returns an empty book store. With uniqueIDs set, creating
// a book whose id is already stored fails with storage.ErrConflict.
func NewBookStore(uniqueIDs bool) *BookStore {
	var opts []records.Option
	if uniqueIDs {
		opts = append(opts, records.WithUniqueKeys())
	}
	return &BookStore{
		books: records.New[uuid.UUID, types.Book](nil, opts...),
		newID: uuid.New,
	}
}

func (s *BookStore) CreateBook(_ context.Context, book types.Book) (types.Book, error) {
	if book.ID == uuid.Nil {
		book.ID = s.newID()
	}
	created, err := s.books.Insert(book)
	if err != nil {
		return types.Book{}, bookErr(err, book.ID)
	}
	return created, nil
}

func (s *BookStore) GetBooks(_ context.Context) ([]types.Book, error) {
	return s.books.List(), nil
}

func (s *BookStore) GetBookByID(_ context.Context, id uuid.UUID) (types.Book, error) {
	book, err := s.books.Get(id)
	if err != nil {
		return types.Book{}, bookErr(err, id)
	}
	return book, nil
}

func (s *BookStore) UpdateBookByID(_ context.Context, id uuid.UUID, book types.Book) (types.Book, error) {
	book.ID = id
	updated, err := s.books.Update(id, book)
	if err != nil {
		return types.Book{}, bookErr(err, id)
	}
	return updated, nil
}

func (s *BookStore) DeleteBookByID(_ context.Context, id uuid.UUID) (types.Book, error) {
	removed, err := s.books.Delete(id)
	if err != nil {
		return types.Book{}, bookErr(err, id)
	}
	return removed, nil
}

func (s *BookStore) SearchBooks(_ context.Context, filter types.BookFilter) ([]types.Book, error) {
	title := strings.ToLower(filter.Title)
	author := strings.ToLower(filter.Author)

	found := s.books.Filter(func(b types.Book) bool {
		return containsFold(b.Title, title) && containsFold(b.Author, author)
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no books found matching criteria", storage.ErrNotFound)
	}
	return found, nil
}

// containsFold reports whether the lowered substr occurs in s ignoring case.
// An empty substr always matches.
func containsFold(s, loweredSubstr string) bool {
	return strings.Contains(strings.ToLower(s), loweredSubstr)
}

func bookErr(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	case errors.Is(err, records.ErrDuplicate):
		return fmt.Errorf("%w: book with id %s", storage.ErrConflict, id)
	default:
		return err
	}
}
