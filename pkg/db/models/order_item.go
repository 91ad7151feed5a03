package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem freezes menu name and price at order time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	MenuName  string    `gorm:"column:menu_name;not null"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// LineTotal returns UnitPrice multiplied by Quantity.
func (o OrderItem) LineTotal() int64 {
	return o.UnitPrice * int64(o.Quantity)
}
