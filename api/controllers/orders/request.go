package orders

import (
	"strings"

	internalorders "github.com/yumhub/yumhub-backend/internal/orders"
	"github.com/yumhub/yumhub-backend/pkg/enums"
)

type createOrderRequest struct {
	TotalPrice      int64   `json:"total_price" validate:"gte=0"`
	DeliveryAddress string  `json:"delivery_address" validate:"max=255"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=CREDIT_CARD SIMPLE_PAY BANK_TRANSFER CASH"`
	OrderChannel    string  `json:"order_channel" validate:"omitempty,oneof=ONLINE OFFLINE"`
	ReceiptMethod   string  `json:"receipt_method" validate:"required,oneof=DELIVERY TAKE_OUT TAKE_IN"`
	RequestMessage  *string `json:"request_message" validate:"omitempty,max=500"`
}

func (p createOrderRequest) toInput() internalorders.CreateOrderInput {
	input := internalorders.CreateOrderInput{
		TotalPrice:      p.TotalPrice,
		DeliveryAddress: strings.TrimSpace(p.DeliveryAddress),
		PaymentMethod:   enums.PaymentMethod(p.PaymentMethod),
		OrderChannel:    enums.OrderChannel(p.OrderChannel),
		ReceiptMethod:   enums.ReceiptMethod(p.ReceiptMethod),
	}
	if p.RequestMessage != nil {
		if msg := strings.TrimSpace(*p.RequestMessage); msg != "" {
			input.RequestMessage = &msg
		}
	}
	return input
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
}
