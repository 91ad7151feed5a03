package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/yumhub/yumhub-backend/internal/cart"
)

type cartResponse struct {
	StoreID *uuid.UUID         `json:"store_id,omitempty"`
	Items   []cartsvc.LineItem `json:"items"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newCartResponse(snapshot cartsvc.Snapshot) cartResponse {
	resp := cartResponse{Items: []cartsvc.LineItem(snapshot)}
	if resp.Items == nil {
		resp.Items = []cartsvc.LineItem{}
	}
	if len(snapshot) > 0 {
		storeID := snapshot.StoreID()
		resp.StoreID = &storeID
	}
	return resp
}
