package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menu is a priced item sold by a store. Price is in the smallest currency unit.
type Menu struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Menu) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
