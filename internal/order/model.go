package order

import (
	"encoding/json"
	"time"

	"github.com/redmonkez12/shop-api/internal/record"
)

// UnknownProductName is the snapshot name of a line whose product does not exist
const UnknownProductName = "unknown product"

// LineItem is an ordered (product, size) with the catalog values seen at order time
type LineItem struct {
	ID                string          `json:"id"`
	Size              string          `json:"size"`
	Quantity          int             `json:"quantity"`
	Name              string          `json:"name"`
	Price             json.RawMessage `json:"price"`
	Image             string          `json:"image"`
	AvailableQuantity int             `json:"availableQuantity"`
	PayOption         bool            `json:"payOption"`
	Extra             record.Fields   `json:"-"`
}

// Order is a placed order. Caller-supplied members (customer, address, ...) are kept in Extra.
type Order struct {
	ID    int           `json:"id"`
	Date  time.Time     `json:"date,omitzero"`
	Items []LineItem    `json:"items"`
	Extra record.Fields `json:"-"`
}

var (
	lineItemFields = []string{"id", "size", "quantity", "name", "price", "image", "availableQuantity", "payOption"}
	orderFields    = []string{"id", "date", "items"}
)

type lineItemJSON LineItem

func (li LineItem) MarshalJSON() ([]byte, error) {
	return record.Join(lineItemJSON(li), li.Extra)
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var v lineItemJSON
	extra, err := record.Split(data, &v, lineItemFields...)
	if err != nil {
		return err
	}
	*li = LineItem(v)
	li.Extra = extra
	return nil
}

type orderJSON Order

func (o Order) MarshalJSON() ([]byte, error) {
	return record.Join(orderJSON(o), o.Extra)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var v orderJSON
	extra, err := record.Split(data, &v, orderFields...)
	if err != nil {
		return err
	}
	*o = Order(v)
	o.Extra = extra
	return nil
}
