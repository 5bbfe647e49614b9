// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may return any JSON shape (a book, a list, a message).
// Error responses always look like:
//
//	{ "status": "error", "error": "no book with id ...", "fields": { ... } }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Response is the standard envelope returned for error cases.
// Fields is only set for validation failures and maps the JSON field
// name to what was wrong with it.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
// Header() must be set before WriteHeader(); headers are locked after it.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.FieldError values into a Response
// whose Error joins every message and whose Fields lists them per field.
//
// Example output:
//
//	{ "status": "error",
//	  "error": "field title is required, field rating must be at most 100",
//	  "fields": { "title": "is required", "rating": "must be at most 100" } }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string
	fields := make(map[string]string, len(errs))

	for _, e := range errs {
		name := jsonName(e.Field())
		msg := fieldMessage(e)
		fields[name] = msg
		errMessages = append(errMessages, fmt.Sprintf("field %s %s", name, msg))
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
		Fields: fields,
	}
}

func fieldMessage(e validator.FieldError) string {
	switch e.ActualTag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return "is invalid"
	}
}

// jsonName maps a Go field name to the lowercase key used on the wire.
// All record fields are single words, so lowering the name is enough.
func jsonName(field string) string {
	return strings.ToLower(field)
}

// StatusFor maps an error from the storage or validation layers to the
// HTTP status a client should see.
func StatusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status from StatusFor. Internal errors
// are replaced by a generic message so storage details never leak.
func WriteError(w http.ResponseWriter, err error) error {
	status := StatusFor(err)

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return WriteJSON(w, status, ValidationError(verrs))
	case status == http.StatusInternalServerError:
		return WriteJSON(w, status, GeneralError(errors.New("internal server error")))
	default:
		return WriteJSON(w, status, GeneralError(err))
	}
}

// WriteDecodeError writes an error returned while decoding a request body.
// A value of the wrong type is a field validation failure (422); anything
// else means the body itself is unusable (400).
func WriteDecodeError(w http.ResponseWriter, err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return WriteJSON(w, http.StatusBadRequest, GeneralError(err))
	}

	name := typeErr.Field
	msg := typeMessage(typeErr.Type)
	return WriteJSON(w, http.StatusUnprocessableEntity, Response{
		Status: StatusError,
		Error:  fmt.Sprintf("field %s %s", name, msg),
		Fields: map[string]string{name: msg},
	})
}

var uuidType = reflect.TypeOf(uuid.UUID{})

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "is invalid"
	}
	if t == uuidType {
		return "must be a UUID"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	default:
		return "is invalid"
	}
}
