package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
	"github.com/yumhub/yumhub-backend/pkg/enums"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateOrderInput carries the checkout request. TotalPrice must equal the
// sum of current menu prices times quantities.
type CreateOrderInput struct {
	TotalPrice      int64
	DeliveryAddress string
	PaymentMethod   enums.PaymentMethod
	OrderChannel    enums.OrderChannel
	ReceiptMethod   enums.ReceiptMethod
	RequestMessage  *string
}

// ListFilter narrows a customer's order history. From and To bound created_at
// inclusively; nil fields do not filter.
type ListFilter struct {
	OrderID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// OrderItemDTO is a frozen order line.
type OrderItemDTO struct {
	MenuName  string `json:"menu_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// OrderDetail is the read projection of an order and its items.
type OrderDetail struct {
	ID              uuid.UUID           `json:"id"`
	StoreID         uuid.UUID           `json:"store_id"`
	UserID          *uuid.UUID          `json:"user_id,omitempty"`
	TotalPrice      int64               `json:"total_price"`
	DeliveryAddress string              `json:"delivery_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	OrderChannel    enums.OrderChannel  `json:"order_channel"`
	ReceiptMethod   enums.ReceiptMethod `json:"receipt_method"`
	Status          enums.OrderStatus   `json:"status"`
	IsRefundable    bool                `json:"is_refundable"`
	StatusHistory   []HistoryEntry      `json:"status_history"`
	RequestMessage  *string             `json:"request_message,omitempty"`
	Items           []OrderItemDTO      `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID           uuid.UUID         `json:"id"`
	StoreID      uuid.UUID         `json:"store_id"`
	TotalPrice   int64             `json:"total_price"`
	Status       enums.OrderStatus `json:"status"`
	IsRefundable bool              `json:"is_refundable"`
	CreatedAt    time.Time         `json:"created_at"`
}

// StatusChangeResult reports the order and the status it moved to.
type StatusChangeResult struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

func newOrderDetail(order *models.Order, history StatusHistory) *OrderDetail {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			MenuName:  item.MenuName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return &OrderDetail{
		ID:              order.ID,
		StoreID:         order.StoreID,
		UserID:          order.UserID,
		TotalPrice:      order.TotalPrice,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		OrderChannel:    order.OrderChannel,
		ReceiptMethod:   order.ReceiptMethod,
		Status:          order.Status,
		IsRefundable:    order.IsRefundable,
		StatusHistory:   history.Entries(),
		RequestMessage:  order.RequestMessage,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

func newOrderSummary(order models.Order) OrderSummary {
	return OrderSummary{
		ID:           order.ID,
		StoreID:      order.StoreID,
		TotalPrice:   order.TotalPrice,
		Status:       order.Status,
		IsRefundable: order.IsRefundable,
		CreatedAt:    order.CreatedAt,
	}
}
