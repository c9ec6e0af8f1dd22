package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redmonkez12/shop-api/internal/filestore"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/product"
	"github.com/redmonkez12/shop-api/internal/record"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrNoItems         = errors.New("order has no items")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidOrder    = errors.New("invalid order")
)

// Metrics receives order outcomes
type Metrics interface {
	OrderPlaced(lines int)
	OrderRejected()
	LowStock(productID, size string)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(int)         {}
func (nopMetrics) OrderRejected()          {}
func (nopMetrics) LowStock(string, string) {}

// PlaceRequest is the body of POST /api/orders.
// Members other than items are copied onto the order; id and date are always set by the server.
type PlaceRequest struct {
	Items []LineItem    `json:"items"`
	Extra record.Fields `json:"-"`
}

func (p *PlaceRequest) UnmarshalJSON(data []byte) error {
	var v struct {
		Items []LineItem `json:"items"`
	}
	extra, err := record.Split(data, &v, orderFields...)
	if err != nil {
		return err
	}
	p.Items = v.Items
	p.Extra = extra
	return nil
}

// Service places and maintains orders against the product catalog
type Service struct {
	store   *filestore.Store
	metrics Metrics
	now     func() time.Time
	write   func(name string, src any) error
}

func NewService(store *filestore.Store, metrics Metrics) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{store: store, metrics: metrics, now: time.Now, write: store.Write}
}

// List returns every order
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.store.Read(filestore.Orders, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// Place resolves the requested lines against the catalog, takes their stock and stores the order.
//
// Stock is taken line by line in memory. If any line is short the whole order is refused with a
// *StockError and neither products nor orders are written, so no partial decrement survives.
// Products are written before orders; if the orders write fails the products file is put back
// as it was read.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	logger := logging.GetLoggerFromContext(ctx)

	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %s size %s", ErrInvalidQuantity, item.ID, item.Size)
		}
	}

	var placed Order
	var low []LowStock
	err := s.store.WithLock(func() error {
		saved, err := s.store.ReadRaw(filestore.Products)
		if err != nil {
			return err
		}
		var products []product.Product
		if err := s.store.Read(filestore.Products, &products); err != nil {
			return err
		}
		var orders []Order
		if err := s.store.Read(filestore.Orders, &orders); err != nil {
			return err
		}

		items := resolve(products, req.Items)

		var shortages []Shortage
		shortages, low = reserve(products, items)
		if len(shortages) > 0 {
			return &StockError{Shortages: shortages}
		}

		placed = Order{
			ID:    nextID(orders),
			Date:  s.now().UTC(),
			Items: items,
			Extra: req.Extra,
		}

		if err := s.write(filestore.Products, products); err != nil {
			return err
		}
		if err := s.write(filestore.Orders, append(orders, placed)); err != nil {
			if rerr := s.store.WriteRaw(filestore.Products, saved); rerr != nil {
				return errors.Join(err, fmt.Errorf("restore products: %w", rerr))
			}
			return err
		}
		return nil
	}, filestore.Orders, filestore.Products)

	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			s.metrics.OrderRejected()
			return nil, err
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	for _, l := range low {
		logger.Warn("low stock",
			"product_id", l.ProductID,
			"product_name", l.ProductName,
			"size", l.Size,
			"remaining", l.Remaining,
		)
		s.metrics.LowStock(l.ProductID, l.Size)
	}
	s.metrics.OrderPlaced(len(placed.Items))

	return &placed, nil
}

// Update merges patch over the stored order. The id cannot be changed.
func (s *Service) Update(ctx context.Context, id int, patch record.Fields) (*Order, error) {
	var updated Order
	err := s.store.WithLock(func() error {
		var orders []Order
		if err := s.store.Read(filestore.Orders, &orders); err != nil {
			return err
		}

		i := index(orders, id)
		if i < 0 {
			return ErrNotFound
		}

		merged, err := record.Overlay(orders[i], patch)
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
			return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
		}

		orders[i] = updated
		return s.write(filestore.Orders, orders)
	}, filestore.Orders)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	return &updated, nil
}

func index(orders []Order, id int) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID is one more than the highest id in use, so ids stay unique when orders are removed by hand
func nextID(orders []Order) int {
	highest := 0
	for _, o := range orders {
		highest = max(highest, o.ID)
	}
	return highest + 1
}
