package orders

import (
	"github.com/yumhub/yumhub-backend/pkg/enums"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
)

// allowedTransitions lists the legal targets per source status. Terminal
// statuses have no entry.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusAccepted, enums.OrderStatusRejected, enums.OrderStatusRefunded},
	enums.OrderStatusAccepted:   {enums.OrderStatusCooking},
	enums.OrderStatusCooking:    {enums.OrderStatusInDelivery},
	enums.OrderStatusInDelivery: {enums.OrderStatusCompleted},
}

// AllowedTargets returns the statuses reachable from the given one.
func AllowedTargets(from enums.OrderStatus) []enums.OrderStatus {
	targets := allowedTransitions[from]
	out := make([]enums.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// AuthorizeStatusChange decides whether an actor with role may change the
// status of an order whose store it does or does not own. MASTER needs no
// ownership; OWNER and MANAGER do; every other role is denied.
func AuthorizeStatusChange(role enums.UserRole, ownsStore bool) error {
	switch role {
	case enums.UserRoleMaster:
		return nil
	case enums.UserRoleOwner, enums.UserRoleManager:
		if ownsStore {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeAccessDenied, "order belongs to another store")
	default:
		return pkgerrors.New(pkgerrors.CodeAccessDenied, "role cannot change order status")
	}
}
