package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redmonkez12/shop-api/internal/filestore"
	"github.com/redmonkez12/shop-api/internal/record"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

// Repository handles product persistence in the products collection
type Repository struct {
	store *filestore.Store
	now   func() time.Time
}

func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// List returns every product in stored order
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.store.Read(filestore.Products, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// GetByID retrieves a product by exact id
func (r *Repository) GetByID(ctx context.Context, id string) (*Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	i := Index(products, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return &products[i], nil
}

// Create assigns a fresh id and creation time to p and appends it.
// Missing sizes default to a single empty size with no stock.
func (r *Repository) Create(ctx context.Context, p Product) (*Product, error) {
	err := r.store.WithLock(func() error {
		var products []Product
		if err := r.store.Read(filestore.Products, &products); err != nil {
			return err
		}

		now := r.now()
		p.ID = nextID(now, products)
		p.CreatedAt = now.UTC()
		if p.Sizes == nil {
			p.Sizes = defaultSizes()
		}

		products = append(products, p)
		return r.store.Write(filestore.Products, products)
	}, filestore.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// Update merges patch over the stored product. The id always stays the one in the path.
func (r *Repository) Update(ctx context.Context, id string, patch record.Fields) (*Product, error) {
	var updated Product
	err := r.store.WithLock(func() error {
		var products []Product
		if err := r.store.Read(filestore.Products, &products); err != nil {
			return err
		}

		i := Index(products, id)
		if i < 0 {
			return ErrNotFound
		}

		merged, err := record.Overlay(products[i], patch)
		if err != nil {
			return err
		}
		if err := merged.Set("id", id); err != nil {
			return err
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &updated); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
		}

		products[i] = updated
		return r.store.Write(filestore.Products, products)
	}, filestore.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &updated, nil
}

// Delete removes the product with the given id
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.store.WithLock(func() error {
		var products []Product
		if err := r.store.Read(filestore.Products, &products); err != nil {
			return err
		}

		before := len(products)
		products = slices.DeleteFunc(products, func(p Product) bool { return p.ID == id })
		if len(products) == before {
			return ErrNotFound
		}
		return r.store.Write(filestore.Products, products)
	}, filestore.Products)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// nextID is the creation time in Unix milliseconds, bumped past ids already taken
func nextID(now time.Time, products []Product) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if Index(products, id) < 0 {
			return id
		}
		ms++
	}
}
