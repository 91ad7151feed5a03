package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is written by the order's own customer, at most once per order.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:reviews_order_id_key"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
