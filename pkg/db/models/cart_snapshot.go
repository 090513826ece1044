package models

import "time"

// CartSnapshot is the persisted mirror of one session cart. Blob holds the
// JSON-encoded item sequence and is overwritten in full on every commit.
type CartSnapshot struct {
	Key       string    `gorm:"column:cart_key;primaryKey"`
	Blob      []byte    `gorm:"column:blob;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
