package cart

import (
	"github.com/google/uuid"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
)

// MaxQuantity caps the quantity of a single cart line.
const MaxQuantity = 999

// LineItem is one entry of a cart snapshot.
type LineItem struct {
	MenuID   uuid.UUID `json:"menu_id"`
	StoreID  uuid.UUID `json:"store_id"`
	Quantity int       `json:"quantity"`
}

// Snapshot is the ordered list of line items for one user's cart.
// A non-empty snapshot holds lines from a single store.
type Snapshot []LineItem

// StoreID returns the store shared by the snapshot lines, or uuid.Nil when empty.
func (s Snapshot) StoreID() uuid.UUID {
	if len(s) == 0 {
		return uuid.Nil
	}
	return s[0].StoreID
}

// SingleStore reports whether every line belongs to the same store.
func (s Snapshot) SingleStore() bool {
	for _, line := range s {
		if line.StoreID != s.StoreID() {
			return false
		}
	}
	return true
}

func (s Snapshot) indexOf(menuID uuid.UUID) int {
	for i, line := range s {
		if line.MenuID == menuID {
			return i
		}
	}
	return -1
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

func snapshotFromItems(items []models.CartItem) Snapshot {
	out := make(Snapshot, 0, len(items))
	for _, item := range items {
		out = append(out, LineItem{
			MenuID:   item.MenuID,
			StoreID:  item.StoreID,
			Quantity: item.Quantity,
		})
	}
	return out
}

func itemsFromSnapshot(cartID uuid.UUID, snapshot Snapshot) []models.CartItem {
	items := make([]models.CartItem, 0, len(snapshot))
	for i, line := range snapshot {
		items = append(items, models.CartItem{
			CartID:   cartID,
			MenuID:   line.MenuID,
			StoreID:  line.StoreID,
			Quantity: line.Quantity,
			Position: i,
		})
	}
	return items
}
