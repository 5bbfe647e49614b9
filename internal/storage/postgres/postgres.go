// Package postgres implements storage.BookStorage on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const bookColumns = "id, title, author, description, rating"

type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// New connects to cfg.Storage.DSN, verifies the connection and makes sure
// the books table exists.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}

	p := &Postgres{db: pool, timeout: cfg.Storage.QueryTimeout}
	if p.timeout <= 0 {
		p.timeout = 3 * time.Second
	}

	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if err := p.migrate(ctx, cfg.Storage.UniqueIDs); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context, unique bool) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	const schema = `
		CREATE TABLE IF NOT EXISTS books (
			seq         BIGSERIAL PRIMARY KEY,
			id          UUID      NOT NULL,
			title       TEXT      NOT NULL,
			author      TEXT      NOT NULL,
			description TEXT      NOT NULL,
			rating      INTEGER   NOT NULL
		)`
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.New: create table: %w", err)
	}

	index := "DROP INDEX IF EXISTS books_id_unique"
	if unique {
		index = "CREATE UNIQUE INDEX IF NOT EXISTS books_id_unique ON books (id)"
	}
	if _, err := p.db.Exec(ctx, index); err != nil {
		return fmt.Errorf("postgres.New: id index: %w", err)
	}
	return nil
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.db.Ping(ctx)
}

func (p *Postgres) CreateBook(ctx context.Context, book types.Book) (types.Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	_, err := p.db.Exec(ctx,
		"INSERT INTO books ("+bookColumns+") VALUES ($1, $2, $3, $4, $5)",
		book.ID, book.Title, book.Author, book.Description, book.Rating)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return types.Book{}, fmt.Errorf("%w: book with id %s", storage.ErrConflict, book.ID)
		}
		return types.Book{}, fmt.Errorf("CreateBook: %w", err)
	}
	return book, nil
}

func (p *Postgres) GetBooks(ctx context.Context) ([]types.Book, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetBooks: %w", err)
	}
	return collectBooks(rows)
}

func (p *Postgres) GetBookByID(ctx context.Context, id uuid.UUID) (types.Book, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var b types.Book
	err := p.db.QueryRow(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id = $1 ORDER BY seq LIMIT 1", id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("GetBookByID: %w", err)
	}
	return b, nil
}

func (p *Postgres) UpdateBookByID(ctx context.Context, id uuid.UUID, book types.Book) (types.Book, error) {
	book.ID = id

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	tag, err := p.db.Exec(ctx, `
		UPDATE books SET title = $1, author = $2, description = $3, rating = $4
		WHERE seq = (SELECT seq FROM books WHERE id = $5 ORDER BY seq LIMIT 1)`,
		book.Title, book.Author, book.Description, book.Rating, id)
	if err != nil {
		return types.Book{}, fmt.Errorf("UpdateBookByID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	return book, nil
}

func (p *Postgres) DeleteBookByID(ctx context.Context, id uuid.UUID) (types.Book, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var b types.Book
	err := p.db.QueryRow(ctx, `
		DELETE FROM books
		WHERE seq = (SELECT seq FROM books WHERE id = $1 ORDER BY seq LIMIT 1)
		RETURNING `+bookColumns, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Book{}, fmt.Errorf("%w: no book with id %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("DeleteBookByID: %w", err)
	}
	return b, nil
}

func (p *Postgres) SearchBooks(ctx context.Context, filter types.BookFilter) ([]types.Book, error) {
	query, args := searchQuery(filter)

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchBooks: %w", err)
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: no books found matching criteria", storage.ErrNotFound)
	}
	return books, nil
}

// searchQuery builds the filtered select. strpos keeps '%' and '_'
// literal, which ILIKE would treat as wildcards.
func searchQuery(filter types.BookFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	argn := 1

	if filter.Title != "" {
		clauses = append(clauses, fmt.Sprintf("strpos(lower(title), lower($%d)) > 0", argn))
		args = append(args, filter.Title)
		argn++
	}
	if filter.Author != "" {
		clauses = append(clauses, fmt.Sprintf("strpos(lower(author), lower($%d)) > 0", argn))
		args = append(args, filter.Author)
	}

	query := "SELECT " + bookColumns + " FROM books"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	return query + " ORDER BY seq", args
}

func collectBooks(rows pgx.Rows) ([]types.Book, error) {
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Book, error) {
		var b types.Book
		err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Rating)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect books: %w", err)
	}
	if books == nil {
		books = make([]types.Book, 0)
	}
	return books, nil
}
