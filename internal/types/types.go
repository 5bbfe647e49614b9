// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Book represents a book record.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  controls how the field appears when encoded to JSON.
//
//  2. validate:"..." holds the rules checked by go-playground/validator.
//     Rating is a pointer so "required" checks that it was sent at all;
//     an explicit 0 is a legal rating.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"       validate:"required"`
	Author      string    `json:"author"      validate:"required,max=100"`
	Description string    `json:"description" validate:"required,max=100"`
	Rating      *int      `json:"rating"      validate:"required,gte=0,lte=100"`
}

// Key returns the book's identifier.
func (b Book) Key() uuid.UUID { return b.ID }

// Clone returns a copy that shares no memory with b.
func (b Book) Clone() Book {
	b.Rating = clonePtr(b.Rating)
	return b
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// UnmarshalJSON decodes a book, reporting a malformed id as a
// *json.UnmarshalTypeError on field "id" like any other mistyped field.
func (b *Book) UnmarshalJSON(data []byte) error {
	type plain Book
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Book(aux.plain)

	if len(aux.ID) == 0 || string(aux.ID) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(aux.ID, &raw); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: uuidType, Field: "id"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string " + raw, Type: uuidType, Field: "id"}
	}
	b.ID = id
	return nil
}

// BookFilter selects books by case-insensitive substring.
// An empty field matches every book.
type BookFilter struct {
	Title  string
	Author string
}

// Empty reports whether no criteria are set.
func (f BookFilter) Empty() bool {
	return f.Title == "" && f.Author == ""
}

// Product represents an item of the demo product catalog.
// IDs are chosen by the caller. Numeric fields are pointers so a missing
// field fails "required" while 0 stays valid.
type Product struct {
	ID          *int     `json:"id"          validate:"required,gte=0"`
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required,max=100"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"required,gte=0"`
}

// Key returns the product's identifier, or -1 when it has none.
func (p Product) Key() int {
	if p.ID == nil {
		return -1
	}
	return *p.ID
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	p.ID = clonePtr(p.ID)
	p.Price = clonePtr(p.Price)
	p.Quantity = clonePtr(p.Quantity)
	return p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return Ptr(*p)
}

// validate is safe for concurrent use and caches struct metadata,
// so one instance serves the whole process.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its validate:"..." tags.
// On failure the returned error is a validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}
