package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/yumhub/yumhub-backend/internal/cart"
)

type addItemRequest struct {
	MenuID   uuid.UUID `json:"menu_id" validate:"required"`
	StoreID  uuid.UUID `json:"store_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"gt=0,lte=999"`
}

func (p addItemRequest) toInput() cartsvc.AddItemInput {
	return cartsvc.AddItemInput{
		MenuID:   p.MenuID,
		StoreID:  p.StoreID,
		Quantity: p.Quantity,
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gt=0,lte=999"`
}
