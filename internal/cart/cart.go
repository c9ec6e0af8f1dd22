// Package cart stores the shared shopping cart as a list of (product, size) lines.
package cart

import (
	"context"
	"fmt"
	"slices"

	"github.com/redmonkez12/shop-api/internal/filestore"
	"github.com/redmonkez12/shop-api/internal/record"
)

// Item is one cart line. Lines are unique by (ID, Size).
type Item struct {
	ID       string        `json:"id"`
	Size     string        `json:"size"`
	Quantity int           `json:"quantity"`
	Extra    record.Fields `json:"-"`
}

var knownFields = []string{"id", "size", "quantity"}

type itemJSON Item

func (i Item) MarshalJSON() ([]byte, error) {
	return record.Join(itemJSON(i), i.Extra)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var v itemJSON
	extra, err := record.Split(data, &v, knownFields...)
	if err != nil {
		return err
	}
	*i = Item(v)
	i.Extra = extra
	return nil
}

func (i Item) sameLine(id, size string) bool {
	return i.ID == id && i.Size == size
}

// Repository handles cart persistence in the cart collection
type Repository struct {
	store *filestore.Store
}

func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store}
}

// List returns every cart line
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.store.Read(filestore.Cart, &items); err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Add sums item into an existing (id, size) line or appends it as a new line.
// Stock is not checked here, only when an order is placed.
func (r *Repository) Add(ctx context.Context, item Item) error {
	err := r.store.WithLock(func() error {
		var items []Item
		if err := r.store.Read(filestore.Cart, &items); err != nil {
			return err
		}

		if i := slices.IndexFunc(items, func(it Item) bool { return it.sameLine(item.ID, item.Size) }); i >= 0 {
			items[i].Quantity += item.Quantity
		} else {
			items = append(items, item)
		}

		return r.store.Write(filestore.Cart, items)
	}, filestore.Cart)
	if err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// Remove drops every line matching (id, size). Removing a missing line is not an error.
func (r *Repository) Remove(ctx context.Context, id, size string) error {
	err := r.store.WithLock(func() error {
		var items []Item
		if err := r.store.Read(filestore.Cart, &items); err != nil {
			return err
		}
		items = slices.DeleteFunc(items, func(it Item) bool { return it.sameLine(id, size) })
		return r.store.Write(filestore.Cart, items)
	}, filestore.Cart)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// Clear empties the cart
func (r *Repository) Clear(ctx context.Context) error {
	err := r.store.WithLock(func() error {
		return r.store.Write(filestore.Cart, []Item{})
	}, filestore.Cart)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
