package cart

import (
	"fmt"

	"github.com/angelmondragon/rocketcart/internal/catalog"
)

type Product = catalog.Product

// CartItem is one cart line: the product fields plus the requested amount.
type CartItem struct {
	Product
	Amount int `json:"amount"`
}

// Cart is ordered by first insertion and holds at most one item per product.
type Cart []CartItem

// Find returns the item for productID and its position.
func (c Cart) Find(productID int64) (CartItem, int, bool) {
	for i, item := range c {
		if item.ID == productID {
			return item, i, true
		}
	}
	return CartItem{}, -1, false
}

// Clone returns an independent copy. A nil cart clones to an empty one.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Validate checks product uniqueness and that every amount is at least one.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for i, item := range c {
		if item.Amount < 1 {
			return fmt.Errorf("item %d (product %d): amount %d must be >= 1", i, item.ID, item.Amount)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %d: duplicate product %d", i, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Amount returns the amount held for productID, or zero.
func (c Cart) Amount(productID int64) int {
	item, _, ok := c.Find(productID)
	if !ok {
		return 0
	}
	return item.Amount
}

// UpdateAmountInput sets an item's amount to an absolute value.
type UpdateAmountInput struct {
	ProductID int64
	Amount    int
}
