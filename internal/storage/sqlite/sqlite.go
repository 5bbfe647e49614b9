// Package sqlite provides a SQLite-backed implementation of the
// storage.BookStorage interface using Go's standard database/sql package.
//
// The package registers its own "sqlite3_books" driver: go-sqlite3 with a
// fold() SQL function backed by strings.ToLower, so searches fold
// non-ASCII letters the same way the other backends do. The sqlite3
// package is also used directly to recognise unique-constraint violations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3_books"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// SQLite is the concrete implementation of storage.BookStorage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db      *sql.DB
	timeout time.Duration
}

// New opens the SQLite database at cfg.Storage.Path, creates the books
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open(driverName, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite serialises writers anyway, and ":memory:" databases exist
	// per connection, so one connection keeps every query on the same data.
	db.SetMaxOpenConns(1)

	// seq preserves insertion order; id is the public identifier and is
	// only unique when the unique index below is in place.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			author      TEXT    NOT NULL,
			description TEXT    NOT NULL,
			rating      INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	index := "DROP INDEX IF EXISTS books_id_unique"
	if cfg.Storage.UniqueIDs {
		index = "CREATE UNIQUE INDEX IF NOT EXISTS books_id_unique ON books (id)"
	}
	if _, err := db.Exec(index); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: id index: %w", err)
	}

	timeout := cfg.Storage.QueryTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &SQLite{Db: db, timeout: timeout}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Db.PingContext(ctx)
}

func (s *SQLite) CreateBook(ctx context.Context, book types.Book) (types.Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Placeholders keep user input out of the SQL text.
	_, err := s.Db.ExecContext(ctx,
		"INSERT INTO books (id, title, author, description, rating) VALUES (?, ?, ?, ?, ?)",
		book.ID, book.Title, book.Author, book.Description, book.Rating,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return types.Book{}, fmt.Errorf("%w: book with id %s", storage.ErrConflict, book.ID)
		}
		return types.Book{}, fmt.Errorf("CreateBook: exec: %w", err)
	}

	return book, nil
}

func (s *SQLite) GetBooks(ctx context.Context) ([]types.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, title, author, description, rating FROM books ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetBooks: query: %w", err)
	}
	return scanBooks(rows)
}

func (s *SQLite) GetBookByID(ctx context.Context, id uuid.UUID) (types.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	book, err := scanBook(s.Db.QueryRowContext(ctx,
		"SELECT id, title, author, description, rating FROM books WHERE id = ? ORDER BY seq LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("GetBookByID: scan: %w", err)
	}
	return book, nil
}

// UpdateBookByID replaces the first row carrying id. The row keeps its
// seq, so the book keeps its place in the listing.
func (s *SQLite) UpdateBookByID(ctx context.Context, id uuid.UUID, book types.Book) (types.Book, error) {
	book.ID = id

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.Db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, description = ?, rating = ?
		WHERE seq = (SELECT seq FROM books WHERE id = ? ORDER BY seq LIMIT 1)`,
		book.Title, book.Author, book.Description, book.Rating, id,
	)
	if err != nil {
		return types.Book{}, fmt.Errorf("UpdateBookByID: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.Book{}, fmt.Errorf("UpdateBookByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	return book, nil
}

// DeleteBookByID reads and removes the first row carrying id inside one
// transaction, so the returned book is exactly the row that was deleted.
func (s *SQLite) DeleteBookByID(ctx context.Context, id uuid.UUID) (types.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Book{}, fmt.Errorf("DeleteBookByID: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	var book types.Book
	err = tx.QueryRowContext(ctx,
		"SELECT seq, id, title, author, description, rating FROM books WHERE id = ? ORDER BY seq LIMIT 1", id,
	).Scan(&seq, &book.ID, &book.Title, &book.Author, &book.Description, &book.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("DeleteBookByID: scan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM books WHERE seq = ?", seq); err != nil {
		return types.Book{}, fmt.Errorf("DeleteBookByID: exec: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Book{}, fmt.Errorf("DeleteBookByID: commit: %w", err)
	}
	return book, nil
}

// SearchBooks matches with instr() rather than LIKE so '%' and '_' in the
// query are taken literally. fold() is used instead of lower(), which
// only folds ASCII.
func (s *SQLite) SearchBooks(ctx context.Context, filter types.BookFilter) ([]types.Book, error) {
	query := "SELECT id, title, author, description, rating FROM books"
	var clauses []string
	var args []any
	if filter.Title != "" {
		clauses = append(clauses, "instr(fold(title), fold(?)) > 0")
		args = append(args, filter.Title)
	}
	if filter.Author != "" {
		clauses = append(clauses, "instr(fold(author), fold(?)) > 0")
		args = append(args, filter.Author)
	}
	if !filter.Empty() {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchBooks: query: %w", err)
	}
	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: no books found matching criteria", storage.ErrNotFound)
	}
	return books, nil
}

func scanBook(row *sql.Row) (types.Book, error) {
	var b types.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating)
	return b, err
}

// scanBooks drains and closes rows.
func scanBooks(rows *sql.Rows) ([]types.Book, error) {
	defer rows.Close()

	books := make([]types.Book, 0)
	for rows.Next() {
		var b types.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return books, nil
}
