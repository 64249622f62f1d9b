package types

import (
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in the cart with its requested quantity.
// The JSON shape matches what the storefront client keeps under its
// storage key, so carts written by either side stay readable.
type LineItem struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

// MarshalJSON writes the price as a bare JSON number ("price":179.9), the
// way the storefront client stores it.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type lineItemJSON struct {
		ID     int64       `json:"id"`
		Title  string      `json:"title"`
		Price  json.Number `json:"price"`
		Image  string      `json:"image"`
		Amount int         `json:"amount"`
	}
	return json.Marshal(lineItemJSON{
		ID:     li.ID,
		Title:  li.Title,
		Price:  priceNumber(li.Price),
		Image:  li.Image,
		Amount: li.Amount,
	})
}

// Subtotal is Price x Amount.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Amount)))
}

// StockRecord is the externally sourced available quantity for a product.
type StockRecord struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Product is the display metadata returned by the product lookup.
type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	type productJSON struct {
		ID    int64       `json:"id"`
		Title string      `json:"title"`
		Price json.Number `json:"price"`
		Image string      `json:"image"`
	}
	return json.Marshal(productJSON{
		ID:    p.ID,
		Title: p.Title,
		Price: priceNumber(p.Price),
		Image: p.Image,
	})
}

func priceNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// NewLineItem creates a line item for p with an amount of 1.
func NewLineItem(p Product) LineItem {
	return LineItem{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Image,
		Amount: 1,
	}
}

// Cart is the ordered collection of line items. Insertion order is
// display order and there is at most one item per ID.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Find returns the index of the item with the given id, or -1.
func (c Cart) Find(id int64) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; callers may mutate it freely.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Count is the number of distinct products in the cart.
func (c Cart) Count() int {
	return len(c.Items)
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
