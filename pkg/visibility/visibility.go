package visibility

import (
	"github.com/google/uuid"

	"github.com/yumhub/yumhub-backend/pkg/enums"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
)

// OrderVisibilityInput drives the shared visibility checks for order reads.
type OrderVisibilityInput struct {
	ActorID      uuid.UUID
	ActorRole    enums.UserRole
	OrderUserID  *uuid.UUID
	StoreOwnerID uuid.UUID
}

// EnsureOrderVisible lets customers read their own orders, store staff read
// their store's orders and MASTER read everything. Hidden orders report
// ORDER_NOT_FOUND so their existence never leaks.
func EnsureOrderVisible(input OrderVisibilityInput) error {
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	switch input.ActorRole {
	case enums.UserRoleMaster:
		return nil
	case enums.UserRoleCustomer:
		if input.OrderUserID != nil && *input.OrderUserID == input.ActorID {
			return nil
		}
	case enums.UserRoleOwner, enums.UserRoleManager:
		if input.StoreOwnerID == input.ActorID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
}
