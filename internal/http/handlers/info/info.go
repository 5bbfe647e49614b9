// Package info serves the small informational endpoints: welcome, about,
// greeting, square and health.
package info

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/books-api/internal/utils/response"
)

// Pinger is implemented by storage backends that can check their
// connection. The memory backend does not implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Welcome handles GET /
func Welcome(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"Welcome": name})
	}
}

// About handles GET /about
func About(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"About": text})
	}
}

// Hello handles GET /hello/{name}
func Hello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"Message": fmt.Sprintf("Hello, %s! Welcome to the books API.", name),
		})
	}
}

type squareResponse struct {
	Number int64 `json:"Number"`
	Square int64 `json:"Square"`
}

// Square handles GET /square?num=N and returns N and N*N.
// num is required; 32-bit range keeps the square inside int64.
func Square() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := strconv.ParseInt(r.URL.Query().Get("num"), 10, 32)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("query parameter num must be an integer")))
			return
		}
		response.WriteJSON(w, http.StatusOK, squareResponse{Number: num, Square: num * num})
	}
}

// Health handles GET /healthz. When storage implements Pinger, the
// check fails with 503 if it cannot be reached.
func Health(storage any) http.HandlerFunc {
	pinger, _ := storage.(Pinger)

	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				slog.ErrorContext(r.Context(), "storage not ready", slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusServiceUnavailable,
					response.GeneralError(errors.New("storage not ready")))
				return
			}
		}
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}
