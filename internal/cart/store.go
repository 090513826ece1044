package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/rocketcart/internal/snapshot"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/logger"
	"github.com/angelmondragon/rocketcart/pkg/metrics"
)

// Params wires a Store to its collaborators.
type Params struct {
	Key       string
	Catalog   Catalog
	Snapshots SnapshotStore
	Notifier  Notifier
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics
}

// Store owns one cart. Operations run one at a time, in call order; each
// validates completely before writing the snapshot and swapping the
// in-memory cart, so a rejected or failed operation leaves both untouched.
type Store struct {
	opMu sync.Mutex

	mu   sync.RWMutex
	cart Cart

	key       string
	catalog   Catalog
	snapshots SnapshotStore
	notifier  Notifier
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
}

// Open hydrates a Store from the snapshot saved under p.Key. A missing or
// unreadable blob yields an empty cart.
func Open(ctx context.Context, p Params) (*Store, error) {
	if strings.TrimSpace(p.Key) == "" {
		return nil, fmt.Errorf("cart key required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}

	s := &Store{
		key:       p.Key,
		catalog:   p.Catalog,
		snapshots: p.Snapshots,
		notifier:  p.Notifier,
		logg:      p.Logger,
		metrics:   p.Metrics,
	}

	ctx = s.logg.WithField(ctx, "cart_key", s.key)
	blob, err := s.snapshots.Get(ctx, s.key)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		s.cart = Cart{}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	default:
		s.cart = decode(ctx, s.logg, blob)
	}
	return s, nil
}

func decode(ctx context.Context, logg *logger.Logger, blob []byte) Cart {
	var c Cart
	if err := json.Unmarshal(blob, &c); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.snapshot.corrupt")
		return Cart{}
	}
	if err := c.Validate(); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.snapshot.invalid")
		return Cart{}
	}
	return c.Clone()
}

// Key is the snapshot key this store writes to.
func (s *Store) Key() string {
	return s.key
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) current() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// AddProduct adds one unit of productID, appending the product on first add.
func (s *Store) AddProduct(ctx context.Context, productID int64) Outcome {
	return s.run(ctx, OperationAdd, productID, func(ctx context.Context) Outcome {
		cur := s.current()
		item, idx, found := cur.Find(productID)

		stock, err := s.catalog.GetStock(ctx, productID)
		if err != nil {
			return failure(OutcomeQueryFailure, OperationAdd, err)
		}

		requested := item.Amount + 1
		if requested > stock.Amount {
			return outOfStock(productID, requested, stock.Amount)
		}

		next := cur.Clone()
		if found {
			next[idx].Amount = requested
		} else {
			product, err := s.catalog.GetProduct(ctx, productID)
			if err != nil {
				return failure(OutcomeQueryFailure, OperationAdd, err)
			}
			next = append(next, CartItem{Product: product, Amount: requested})
		}
		return s.commit(ctx, OperationAdd, next)
	})
}

// RemoveProduct drops the item for productID.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) Outcome {
	return s.run(ctx, OperationRemove, productID, func(ctx context.Context) Outcome {
		cur := s.current()
		_, idx, found := cur.Find(productID)
		if !found {
			return failure(OutcomeNotFound, OperationRemove, notInCart(productID))
		}

		next := make(Cart, 0, len(cur)-1)
		next = append(next, cur[:idx]...)
		next = append(next, cur[idx+1:]...)
		return s.commit(ctx, OperationRemove, next)
	})
}

// UpdateProductAmount sets the item's amount to in.Amount. Non-positive
// amounts are ignored without notification.
func (s *Store) UpdateProductAmount(ctx context.Context, in UpdateAmountInput) Outcome {
	return s.run(ctx, OperationUpdateAmount, in.ProductID, func(ctx context.Context) Outcome {
		if in.Amount <= 0 {
			return Outcome{Kind: OutcomeInvalidAmount}
		}

		stock, err := s.catalog.GetStock(ctx, in.ProductID)
		if err != nil {
			return failure(OutcomeQueryFailure, OperationUpdateAmount, err)
		}
		if in.Amount > stock.Amount {
			return outOfStock(in.ProductID, in.Amount, stock.Amount)
		}

		cur := s.current()
		_, idx, found := cur.Find(in.ProductID)
		if !found {
			return failure(OutcomeNotFound, OperationUpdateAmount, notInCart(in.ProductID))
		}

		next := cur.Clone()
		next[idx].Amount = in.Amount
		return s.commit(ctx, OperationUpdateAmount, next)
	})
}

func (s *Store) run(ctx context.Context, operation string, productID int64, fn func(context.Context) Outcome) Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	start := time.Now()
	ctx = s.logg.WithOperation(ctx, operation, productID)

	out := fn(ctx)

	s.metrics.ObserveOperation(operation, string(out.Kind), time.Since(start))
	s.record(ctx, operation, productID, out)
	return out
}

func (s *Store) record(ctx context.Context, operation string, productID int64, out Outcome) {
	ctx = s.logg.WithField(ctx, "outcome", string(out.Kind))
	switch out.Kind {
	case OutcomeCommitted:
		s.logg.Debug(ctx, "cart.operation.committed")
	case OutcomeInvalidAmount:
		s.logg.Debug(ctx, "cart.operation.ignored")
	case OutcomeOutOfStock, OutcomeNotFound:
		s.logg.Info(ctx, "cart.operation.rejected")
	default:
		s.logg.Error(ctx, "cart.operation.failed", out.Err)
	}

	if out.Notifies() && s.notifier != nil {
		s.notifier.Report(ctx, out.notification(operation, productID))
	}
}

// commit writes next to the snapshot store and, only if that succeeds,
// makes it the current cart.
func (s *Store) commit(ctx context.Context, operation string, next Cart) Outcome {
	blob, err := json.Marshal(next)
	if err != nil {
		return failure(OutcomeFailed, operation, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart"))
	}
	if err := s.snapshots.Set(ctx, s.key, blob); err != nil {
		return failure(OutcomeFailed, operation, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot"))
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return committed()
}

func notInCart(productID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d is not in the cart", productID))
}
