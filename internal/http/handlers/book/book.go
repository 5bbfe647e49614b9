// Package book contains the HTTP handlers for the Book resource.
//
// Every handler is built by a factory that receives its dependencies and
// returns the http.HandlerFunc the router needs:
//
//	router.HandleFunc("POST /book", book.New(books))
//
// New(books) runs once at startup; the returned closure runs on every
// request and reaches books through the closure.
package book

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/aanand-mishra/books-api/internal/utils/request"
	"github.com/aanand-mishra/books-api/internal/utils/response"
	"github.com/google/uuid"
)

// DeleteResponse is returned by a successful DELETE.
type DeleteResponse struct {
	Message string     `json:"Message"`
	Book    types.Book `json:"Book"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /book
// Creates a book from the JSON request body. The id may be omitted, in
// which case the storage generates one.
//
// Request body (JSON):
//
//	{ "title": "Clean Code", "author": "Martin", "description": "...", "rating": 90 }
//
// Responses:
//
//	201 Created              the stored book, including its id
//	400 Bad Request          empty or malformed body
//	409 Conflict             id already taken (only with storage.unique_ids)
//	422 Unprocessable Entity failed validation, a missing rating or a
//	                         field of the wrong type (including a non-UUID id)
//
// ─────────────────────────────────────────────────────────────────────────────
func New(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "creating a book")

		var book types.Book
		if err := request.DecodeJSON(r, &book); err != nil {
			response.WriteDecodeError(w, err)
			return
		}

		if err := types.Validate(book); err != nil {
			response.WriteError(w, err)
			return
		}

		created, err := books.CreateBook(r.Context(), book)
		if err != nil {
			logFailure(r, "error creating book", err)
			response.WriteError(w, err)
			return
		}

		slog.InfoContext(r.Context(), "book created", slog.String("id", created.ID.String()))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetList handles GET /book
// Returns every book in insertion order; [] when there are none.
func GetList(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "getting all books")

		list, err := books.GetBooks(r.Context())
		if err != nil {
			logFailure(r, "error getting books", err)
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetByID handles GET /book/{id}
func GetByID(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.InfoContext(r.Context(), "getting a book", slog.String("id", id.String()))

		book, err := books.GetBookByID(r.Context(), id)
		if err != nil {
			logFailure(r, "error getting book", err)
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, book)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /book/{id}
// Replaces ALL fields of an existing book. The body may repeat the id from
// the path or leave it out; a different id is rejected because ids never
// change.
//
// Responses:
//
//	200 OK                   the stored book
//	400 Bad Request          invalid id, empty or malformed body
//	404 Not Found            no book with that id
//	422 Unprocessable Entity failed validation or mismatching body id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.InfoContext(r.Context(), "updating a book", slog.String("id", id.String()))

		var book types.Book
		if err := request.DecodeJSON(r, &book); err != nil {
			response.WriteDecodeError(w, err)
			return
		}

		if book.ID != uuid.Nil && book.ID != id {
			response.WriteJSON(w, http.StatusUnprocessableEntity, response.Response{
				Status: response.StatusError,
				Error:  "field id must match the id in the path",
				Fields: map[string]string{"id": "must match the id in the path"},
			})
			return
		}

		if err := types.Validate(book); err != nil {
			response.WriteError(w, err)
			return
		}

		updated, err := books.UpdateBookByID(r.Context(), id, book)
		if err != nil {
			logFailure(r, "error updating book", err)
			response.WriteError(w, err)
			return
		}

		slog.InfoContext(r.Context(), "book updated", slog.String("id", id.String()))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /book/{id}
// Responds with the removed book.
func Delete(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.InfoContext(r.Context(), "deleting a book", slog.String("id", id.String()))

		removed, err := books.DeleteBookByID(r.Context(), id)
		if err != nil {
			logFailure(r, "error deleting book", err)
			response.WriteError(w, err)
			return
		}

		slog.InfoContext(r.Context(), "book deleted", slog.String("id", id.String()))
		response.WriteJSON(w, http.StatusOK, DeleteResponse{
			Message: "Book deleted successfully",
			Book:    removed,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search handles GET /book/search?title=&author=
// Both parameters are optional, case-insensitive substrings, and must all
// match. Zero matches is a 404, not an empty list:
//
//	/book/search?title=clean
//	/book/search?author=martin
//
// ─────────────────────────────────────────────────────────────────────────────
func Search(books storage.BookStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := types.BookFilter{
			Title:  query.Get("title"),
			Author: query.Get("author"),
		}
		slog.InfoContext(r.Context(), "searching books",
			slog.String("title", filter.Title),
			slog.String("author", filter.Author))

		found, err := books.SearchBooks(r.Context(), filter)
		if err != nil {
			logFailure(r, "error searching books", err)
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, found)
	}
}

// pathID parses the {id} path segment. On failure it has already written
// a 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be a UUID")))
		return uuid.Nil, false
	}
	return id, true
}

// logFailure logs client errors at warn level and everything else at error.
func logFailure(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if response.StatusFor(err) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(r.Context(), level, msg, slog.String("error", err.Error()))
}
