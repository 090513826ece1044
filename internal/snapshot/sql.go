package snapshot

import (
	"context"
	"errors"

	"github.com/angelmondragon/rocketcart/pkg/db"
	"github.com/angelmondragon/rocketcart/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore persists snapshots in the cart_snapshots table.
type SQLStore struct {
	client *db.Client
}

func NewSQLStore(client *db.Client) *SQLStore {
	return &SQLStore{client: client}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row models.CartSnapshot
	err := s.client.DB().WithContext(ctx).
		Where("cart_key = ?", key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.Blob, nil
}

// Set upserts the row for key, replacing any previous blob.
func (s *SQLStore) Set(ctx context.Context, key string, blob []byte) error {
	row := models.CartSnapshot{Key: key, Blob: blob}
	return s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.client.DB().WithContext(ctx).
		Where("cart_key = ?", key).
		Delete(&models.CartSnapshot{}).Error
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *SQLStore) Close() error {
	return s.client.Close()
}
