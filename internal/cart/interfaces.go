package cart

import (
	"context"

	"github.com/angelmondragon/rocketcart/internal/catalog"
	"github.com/angelmondragon/rocketcart/internal/notifications"
)

// StockLookup reports the purchasable units of a product.
type StockLookup interface {
	GetStock(ctx context.Context, productID int64) (catalog.Stock, error)
}

// ProductLookup loads the catalog record for a product.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID int64) (catalog.Product, error)
}

// Catalog is the remote service consulted before every stock-sensitive change.
type Catalog interface {
	StockLookup
	ProductLookup
}

// SnapshotStore persists the encoded cart. Get returns snapshot.ErrNotFound
// when nothing has been written under key.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
}

// Notifier receives user-facing messages for rejected or failed operations.
type Notifier interface {
	Report(ctx context.Context, msg notifications.Message)
}
