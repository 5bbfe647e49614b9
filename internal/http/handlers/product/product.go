// Package product contains the HTTP handlers for the product catalog.
package product

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/aanand-mishra/books-api/internal/utils/request"
	"github.com/aanand-mishra/books-api/internal/utils/response"
)

// CreateResponse is returned by a successful POST.
type CreateResponse struct {
	Message string        `json:"message"`
	Product types.Product `json:"product"`
}

// GetList handles GET /products/
func GetList(products storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "getting all products")

		list, err := products.GetProducts(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "error getting products", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetByID handles GET /products/{id}
// Path parameter {id} must be an integer. Unknown ids are a 404.
func GetByID(products storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("id")
		slog.InfoContext(r.Context(), "getting a product", slog.String("id", raw))

		id, err := strconv.Atoi(raw)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		product, err := products.GetProductByID(r.Context(), id)
		if err != nil {
			slog.WarnContext(r.Context(), "error getting product",
				slog.String("id", raw),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, product)
	}
}

// New handles POST /products/
//
// Request body (JSON):
//
//	{ "id": 5, "name": "Chair", "description": "An office chair", "price": 89.5, "quantity": 12 }
//
// Success response (201 Created):
//
//	{ "message": "Product created successfully", "product": { ... } }
func New(products storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "creating a product")

		var product types.Product
		if err := request.DecodeJSON(r, &product); err != nil {
			response.WriteDecodeError(w, err)
			return
		}

		if err := types.Validate(product); err != nil {
			response.WriteError(w, err)
			return
		}

		created, err := products.CreateProduct(r.Context(), product)
		if err != nil {
			slog.WarnContext(r.Context(), "error creating product", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.InfoContext(r.Context(), "product created", slog.Int("id", created.Key()))
		response.WriteJSON(w, http.StatusCreated, CreateResponse{
			Message: "Product created successfully",
			Product: created,
		})
	}
}
