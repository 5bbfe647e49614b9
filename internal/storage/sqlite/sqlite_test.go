package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.BookStorage = (*SQLite)(nil)

func newTestDB(t *testing.T, unique bool) *SQLite {
	t.Helper()
	db, err := New(&config.Config{Storage: config.Storage{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		QueryTimeout: time.Second,
		UniqueIDs:    unique,
	}})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func book(title, author string) types.Book {
	return types.Book{Title: title, Author: author, Description: "desc", Rating: types.Ptr(42)}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	created, err := db.CreateBook(ctx, book("Clean Code", "Martin"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := db.GetBookByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = db.GetBookByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetBooksOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	empty, err := db.GetBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a, _ := db.CreateBook(ctx, book("B title", "x"))
	b, _ := db.CreateBook(ctx, book("A title", "y"))

	books, err := db.GetBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Book{a, b}, books)
}

func TestUpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	a, _ := db.CreateBook(ctx, book("First", "x"))
	b, _ := db.CreateBook(ctx, book("Second", "y"))

	updated, err := db.UpdateBookByID(ctx, a.ID, types.Book{Title: "New", Author: "z", Description: "d", Rating: types.Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID)

	books, err := db.GetBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Book{updated, b}, books)

	_, err = db.UpdateBookByID(ctx, uuid.New(), book("x", "y"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	a, _ := db.CreateBook(ctx, book("A", "x"))
	b, _ := db.CreateBook(ctx, book("B", "x"))
	c, _ := db.CreateBook(ctx, book("C", "x"))

	removed, err := db.DeleteBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, removed)

	books, err := db.GetBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Book{a, c}, books)

	_, err = db.DeleteBookByID(ctx, b.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	clean, _ := db.CreateBook(ctx, book("Clean Code", "Martin"))
	refac, _ := db.CreateBook(ctx, book("Refactoring", "Fowler"))
	_, _ = db.CreateBook(ctx, book("100% Go", "Pike"))

	got, err := db.SearchBooks(ctx, types.BookFilter{Title: "CLEAN"})
	require.NoError(t, err)
	assert.Equal(t, []types.Book{clean}, got)

	got, err = db.SearchBooks(ctx, types.BookFilter{Title: "r", Author: "fowl"})
	require.NoError(t, err)
	assert.Equal(t, []types.Book{refac}, got)

	got, err = db.SearchBooks(ctx, types.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = db.SearchBooks(ctx, types.BookFilter{Title: "%"})
	require.NoError(t, err)

	_, err = db.SearchBooks(ctx, types.BookFilter{Title: "_"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.SearchBooks(ctx, types.BookFilter{Author: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, false)

	created, err := db.CreateBook(ctx, book("Ärger im Ölberg", "Müller"))
	require.NoError(t, err)

	for _, filter := range []types.BookFilter{
		{Title: "ärger"},
		{Title: "ÖLBERG"},
		{Author: "MÜLLER"},
	} {
		got, err := db.SearchBooks(ctx, filter)
		require.NoError(t, err, "filter %+v", filter)
		assert.Equal(t, []types.Book{created}, got)
	}
}

func TestUniqueIDs(t *testing.T) {
	ctx := context.Background()
	b := book("Dup", "x")
	b.ID = uuid.New()

	t.Run("duplicates accepted", func(t *testing.T) {
		db := newTestDB(t, false)
		_, err := db.CreateBook(ctx, b)
		require.NoError(t, err)
		_, err = db.CreateBook(ctx, b)
		require.NoError(t, err)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		db := newTestDB(t, true)
		_, err := db.CreateBook(ctx, b)
		require.NoError(t, err)
		_, err = db.CreateBook(ctx, b)
		assert.ErrorIs(t, err, storage.ErrConflict)
	})
}

func TestPersistsToFile(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.Storage{Path: filepath.Join(t.TempDir(), "books.db")}}

	db, err := New(cfg)
	require.NoError(t, err)
	created, err := db.CreateBook(ctx, book("Kept", "x"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := New(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.Ping(ctx))
	got, err := reopened.GetBookByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
