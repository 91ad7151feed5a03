package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusRejected   OrderStatus = "REJECTED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
	OrderStatusCooking    OrderStatus = "COOKING"
	OrderStatusInDelivery OrderStatus = "IN_DELIVERY"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusRejected,
	OrderStatusRefunded,
	OrderStatusCooking,
	OrderStatusInDelivery,
	OrderStatusCompleted,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// IsTerminal reports whether no further transitions leave the status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusRejected, OrderStatusRefunded, OrderStatusCompleted:
		return true
	default:
		return false
	}
}
