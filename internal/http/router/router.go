// Package router wires handlers to routes and wraps them in middleware.
package router

import (
	"net/http"

	"github.com/aanand-mishra/books-api/internal/http/handlers/book"
	"github.com/aanand-mishra/books-api/internal/http/handlers/info"
	"github.com/aanand-mishra/books-api/internal/http/handlers/product"
	"github.com/aanand-mishra/books-api/internal/http/middleware"
	"github.com/aanand-mishra/books-api/internal/storage"
)

// Deps are the dependencies the routes need. Limiter may be nil to turn
// rate limiting off.
type Deps struct {
	Books    storage.BookStorage
	Products storage.ProductStorage
	Limiter  *middleware.RateLimiter
}

// New returns the application's root handler.
//
// Route table:
//
//	GET    /                     welcome message
//	GET    /about                about message
//	GET    /hello/{name}         greeting
//	GET    /square?num=          square of an integer
//	GET    /healthz              liveness / storage readiness
//	GET    /book                 list all books
//	POST   /book                 create a book
//	GET    /book/search          search by title/author
//	GET    /book/{id}            get one book
//	PUT    /book/{id}            replace a book
//	DELETE /book/{id}            delete a book
//	GET    /products/            list all products
//	POST   /products/            create a product
//	GET    /products/{id}        get one product
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", info.Welcome("books-api"))
	mux.HandleFunc("GET /about", info.About("A demo API for books and products."))
	mux.HandleFunc("GET /hello/{name}", info.Hello())
	mux.HandleFunc("GET /square", info.Square())
	mux.HandleFunc("GET /healthz", info.Health(d.Books))

	mux.HandleFunc("GET /book", book.GetList(d.Books))
	mux.HandleFunc("POST /book", book.New(d.Books))
	mux.HandleFunc("GET /book/search", book.Search(d.Books))
	mux.HandleFunc("GET /book/{id}", book.GetByID(d.Books))
	mux.HandleFunc("PUT /book/{id}", book.Update(d.Books))
	mux.HandleFunc("DELETE /book/{id}", book.Delete(d.Books))

	mux.HandleFunc("GET /products", product.GetList(d.Products))
	mux.HandleFunc("GET /products/{$}", product.GetList(d.Products))
	mux.HandleFunc("POST /products", product.New(d.Products))
	mux.HandleFunc("POST /products/{$}", product.New(d.Products))
	mux.HandleFunc("GET /products/{id}", product.GetByID(d.Products))

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.AccessLog,
		middleware.Recover,
	}
	if d.Limiter != nil {
		mws = append(mws, d.Limiter.Middleware)
	}
	return middleware.Chain(mux, mws...)
}
