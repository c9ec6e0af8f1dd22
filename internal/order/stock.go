package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redmonkez12/shop-api/internal/product"
)

var zeroPrice = json.RawMessage("0")

// LowStockThreshold is the remaining quantity at or below which a size is reported as low
const LowStockThreshold = 2

// ErrInsufficientStock matches every *StockError
var ErrInsufficientStock = errors.New("insufficient stock")

// Shortage describes one line that could not be served
type Shortage struct {
	ID        string `json:"id"`
	Size      string `json:"size"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError lists every line of an order that exceeded the available stock
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s/%s requested %d available %d", s.ID, s.Size, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LowStock is a size left at or below LowStockThreshold by an order
type LowStock struct {
	ProductID   string
	ProductName string
	Size        string
	Remaining   int
}

// resolve snapshots catalog values into each requested line. The price is copied as stored.
func resolve(products []product.Product, requested []LineItem) []LineItem {
	items := make([]LineItem, len(requested))
	for i, req := range requested {
		item := req
		item.Name = UnknownProductName
		item.Price = zeroPrice
		item.Image = ""
		item.AvailableQuantity = 0
		item.PayOption = false

		if pi := product.Index(products, req.ID); pi >= 0 {
			p := &products[pi]
			if p.Name != "" {
				item.Name = p.Name
			}
			if len(p.Price) > 0 {
				item.Price = p.Price
			}
			item.Image = p.Image1
			if si := p.SizeIndex(req.Size); si >= 0 {
				item.AvailableQuantity = p.Sizes[si].Quantity
			}
		}
		items[i] = item
	}
	return items
}

// reserve decrements products in place for every line that fits the stock left by the
// lines before it. Lines that do not fit are returned as shortages; products are still
// modified for the others, so callers must discard products when shortages is not empty.
func reserve(products []product.Product, items []LineItem) (shortages []Shortage, low []LowStock) {
	for _, item := range items {
		pi := product.Index(products, item.ID)
		if pi < 0 {
			shortages = append(shortages, Shortage{ID: item.ID, Size: item.Size, Requested: item.Quantity})
			continue
		}
		p := &products[pi]

		si := p.SizeIndex(item.Size)
		if si < 0 {
			shortages = append(shortages, Shortage{ID: item.ID, Size: item.Size, Requested: item.Quantity})
			continue
		}
		size := &p.Sizes[si]

		if size.Quantity < item.Quantity {
			shortages = append(shortages, Shortage{ID: item.ID, Size: item.Size, Requested: item.Quantity, Available: size.Quantity})
			continue
		}

		size.Quantity -= item.Quantity
		if size.Quantity <= LowStockThreshold {
			low = append(low, LowStock{ProductID: p.ID, ProductName: p.Name, Size: size.Size, Remaining: size.Quantity})
		}
	}
	return shortages, low
}
