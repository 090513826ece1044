package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when the catalog has no record for an id.
var ErrProductNotFound = errors.New("product not found")

// Product is the catalog record copied into cart items.
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price Price  `json:"price"`
	Image string `json:"image"`
}

// Price is a decimal amount that travels as a bare JSON number, the shape the
// catalog serves and clients read back from the cart.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted strings.
func (p *Price) UnmarshalJSON(b []byte) error {
	return p.Decimal.UnmarshalJSON(b)
}

// Stock reports the maximum purchasable units of a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
