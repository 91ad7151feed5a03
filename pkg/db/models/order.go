package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/pkg/enums"
)

// Order is created once at checkout. Only Status, StatusHistory and
// IsRefundable change afterwards.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID         uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	UserID          *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	TotalPrice      int64               `gorm:"column:total_price;not null"`
	DeliveryAddress string              `gorm:"column:delivery_address;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:varchar(50);not null"`
	OrderChannel    enums.OrderChannel  `gorm:"column:order_channel;type:varchar(20);not null"`
	ReceiptMethod   enums.ReceiptMethod `gorm:"column:receipt_method;type:varchar(20);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:varchar(20);not null"`
	IsRefundable    bool                `gorm:"column:is_refundable;not null"`
	StatusHistory   string              `gorm:"column:status_history;type:text;not null"`
	RequestMessage  *string             `gorm:"column:request_message"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
