package product

import (
	"encoding/json"
	"time"

	"github.com/redmonkez12/shop-api/internal/record"
)

// Size is the stock held for one size of a product
type Size struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Product is a catalog entry. Members the API does not know about are kept in Extra.
// Price is stored as the client sent it; nothing in the catalog computes with it.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     json.RawMessage `json:"price,omitempty"`
	Image1    string          `json:"image1,omitempty"`
	Sizes     []Size          `json:"sizes"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
	Extra     record.Fields   `json:"-"`
}

var knownFields = []string{"id", "name", "price", "image1", "sizes", "createdAt"}

type productJSON Product

func (p Product) MarshalJSON() ([]byte, error) {
	return record.Join(productJSON(p), p.Extra)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var v productJSON
	extra, err := record.Split(data, &v, knownFields...)
	if err != nil {
		return err
	}
	*p = Product(v)
	p.Extra = extra
	return nil
}

// SizeIndex returns the position of size in p.Sizes, or -1
func (p *Product) SizeIndex(size string) int {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return i
		}
	}
	return -1
}

// Index returns the position of the product with the given id, or -1
func Index(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func defaultSizes() []Size {
	return []Size{{Size: "", Quantity: 0}}
}
