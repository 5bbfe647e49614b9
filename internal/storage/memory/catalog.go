package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/storage/records"
	"github.com/aanand-mishra/books-api/internal/types"
)

// DefaultProducts is the catalog the service starts with.
func DefaultProducts() []types.Product {
	product := func(id int, name, description string, price float64, quantity int) types.Product {
		return types.Product{
			ID:          types.Ptr(id),
			Name:        name,
			Description: description,
			Price:       types.Ptr(price),
			Quantity:    types.Ptr(quantity),
		}
	}
	return []types.Product{
		product(1, "Phone", "A smartphone", 699.99, 50),
		product(2, "Laptop", "A powerful laptop", 999.99, 30),
		product(3, "Pen", "A blue ink pen", 1.99, 100),
		product(4, "Table", "A wooden table", 199.99, 20),
	}
}

// ProductStore implements storage.ProductStorage in memory.
type ProductStore struct {
	products *records.Store[int, types.Product]
}

// NewProductStore returns a catalog seeded with seed, in order.
func NewProductStore(seed []types.Product, uniqueIDs bool) *ProductStore {
	var opts []records.Option
	if uniqueIDs {
		opts = append(opts, records.WithUniqueKeys())
	}
	return &ProductStore{products: records.New[int, types.Product](seed, opts...)}
}

func (s *ProductStore) CreateProduct(_ context.Context, product types.Product) (types.Product, error) {
	created, err := s.products.Insert(product)
	if errors.Is(err, records.ErrDuplicate) {
		return types.Product{}, fmt.Errorf("%w: product with id %d", storage.ErrConflict, product.Key())
	}
	return created, err
}

func (s *ProductStore) GetProducts(_ context.Context) ([]types.Product, error) {
	return s.products.List(), nil
}

func (s *ProductStore) GetProductByID(_ context.Context, id int) (types.Product, error) {
	product, err := s.products.Get(id)
	if errors.Is(err, records.ErrNotFound) {
		return types.Product{}, fmt.Errorf("%w: no product with id %d", storage.ErrNotFound, id)
	}
	return product, err
}
