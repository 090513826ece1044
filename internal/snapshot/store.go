package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/rocketcart/pkg/config"
	"github.com/angelmondragon/rocketcart/pkg/db"
	"github.com/angelmondragon/rocketcart/pkg/logger"
	"github.com/angelmondragon/rocketcart/pkg/migrate"
	"github.com/angelmondragon/rocketcart/pkg/redis"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("snapshot not found")

// Store is a key/value blob store. Set always overwrites the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// New opens the store selected by cfg.Cart.SnapshotDriver.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Cart.SnapshotDriver))
	ctx = logg.WithField(ctx, "snapshot_driver", driver)

	switch driver {
	case "", config.SnapshotDriverMemory:
		logg.Info(ctx, "using in-memory cart snapshots")
		return NewMemoryStore(), nil
	case config.SnapshotDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("init redis snapshot store: %w", err)
		}
		return NewRedisStore(client, cfg.Cart.SnapshotTTL), nil
	case config.SnapshotDriverPostgres, config.SnapshotDriverSQLite:
		dbCfg := cfg.DB
		dbCfg.Driver = driver
		client, err := db.New(ctx, dbCfg, logg)
		if err != nil {
			return nil, fmt.Errorf("init sql snapshot store: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewSQLStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot driver %q", cfg.Cart.SnapshotDriver)
	}
}
