package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/internal/cart"
	"github.com/yumhub/yumhub-backend/internal/menus"
	"github.com/yumhub/yumhub-backend/internal/stores"
	"github.com/yumhub/yumhub-backend/pkg/db/models"
	"github.com/yumhub/yumhub-backend/pkg/enums"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/pagination"
	"github.com/yumhub/yumhub-backend/pkg/visibility"
)

const defaultRefundWindow = 5 * time.Minute

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (cart.Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// StoreReader resolves stores by id.
type StoreReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// MenuReader resolves menus by id.
type MenuReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Menu, error)
}

// RefundScheduler enqueues the deferred refund-window expiry of an order.
type RefundScheduler interface {
	ScheduleOnce(ctx context.Context, delay time.Duration, orderID uuid.UUID) error
}

type (
	storeReaderFactory func(tx *gorm.DB) StoreReader
	menuReaderFactory  func(tx *gorm.DB) MenuReader
)

func defaultStoreReader(tx *gorm.DB) StoreReader { return stores.NewRepository(tx) }
func defaultMenuReader(tx *gorm.DB) MenuReader   { return menus.NewRepository(tx) }

// Service builds orders from carts and drives their status machine.
type Service interface {
	CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (uuid.UUID, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	GetOrderDetailForActor(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor Actor) (*StatusChangeResult, error)
	ListCustomerOrders(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) (pagination.Page[OrderSummary], error)
	DisableRefund(ctx context.Context, orderID uuid.UUID) error
}

// ServiceParams configure the orders service.
type ServiceParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Repo         Repository
	Carts        cartService
	Refunds      RefundScheduler
	RefundWindow time.Duration
	Stores       storeReaderFactory
	Menus        menuReaderFactory
	Now          func() time.Time
}

type service struct {
	logg         *logger.Logger
	tx           txRunner
	repo         Repository
	carts        cartService
	refunds      RefundScheduler
	refundWindow time.Duration
	stores       storeReaderFactory
	menus        menuReaderFactory
	now          func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Refunds == nil {
		return nil, fmt.Errorf("refund scheduler required")
	}
	svc := &service{
		logg:         params.Logger,
		tx:           params.DB,
		repo:         params.Repo,
		carts:        params.Carts,
		refunds:      params.Refunds,
		refundWindow: params.RefundWindow,
		stores:       params.Stores,
		menus:        params.Menus,
		now:          params.Now,
	}
	if svc.refundWindow <= 0 {
		svc.refundWindow = defaultRefundWindow
	}
	if svc.stores == nil {
		svc.stores = defaultStoreReader
	}
	if svc.menus == nil {
		svc.menus = defaultMenuReader
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// CreateOrder snapshots the actor's cart into a PENDING order priced from
// the current menus, schedules its refund-window expiry and clears the cart.
func (s *service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (uuid.UUID, error) {
	if actor.UserID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateCreateInput(&input); err != nil {
		return uuid.Nil, err
	}
	ctx = s.logg.WithUserID(ctx, actor.UserID.String())

	snapshot, err := s.carts.GetCart(ctx, actor.UserID)
	if err != nil {
		return uuid.Nil, s.fail(ctx, "create_order", err)
	}
	if len(snapshot) == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeCartEmpty, "cart is empty")
	}
	if !snapshot.SingleStore() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeDifferentStoreItems, "cart holds items from more than one store")
	}

	var orderID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores(tx).FindByID(ctx, snapshot.StoreID())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
		}

		items, total, err := s.priceLines(ctx, s.menus(tx), store.ID, snapshot)
		if err != nil {
			return err
		}
		if total != input.TotalPrice {
			return pkgerrors.New(pkgerrors.CodePriceMismatch, "order total does not match current prices").
				WithDetails(map[string]any{"expected": total, "received": input.TotalPrice})
		}

		history, err := NewStatusHistory(enums.OrderStatusPending, s.now()).Serialize()
		if err != nil {
			return err
		}
		userID := actor.UserID
		order, err := s.repo.WithTx(tx).CreateOrder(ctx, &models.Order{
			StoreID:         store.ID,
			UserID:          &userID,
			TotalPrice:      total,
			DeliveryAddress: input.DeliveryAddress,
			PaymentMethod:   input.PaymentMethod,
			OrderChannel:    input.OrderChannel,
			ReceiptMethod:   input.ReceiptMethod,
			Status:          enums.OrderStatusPending,
			IsRefundable:    true,
			StatusHistory:   history,
			RequestMessage:  input.RequestMessage,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.repo.WithTx(tx).CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := s.refunds.ScheduleOnce(ctx, s.refundWindow, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule refund window")
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, s.fail(ctx, "create_order", err)
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	if err := s.carts.Clear(ctx, actor.UserID); err != nil {
		s.logg.Error(ctx, "order created but cart clear failed", err)
	}
	s.logg.Info(ctx, "order created")
	return orderID, nil
}

// priceLines resolves every line against its menu and freezes name and price.
func (s *service) priceLines(ctx context.Context, reader MenuReader, storeID uuid.UUID, snapshot cart.Snapshot) ([]models.OrderItem, int64, error) {
	ids := make([]uuid.UUID, 0, len(snapshot))
	for _, line := range snapshot {
		ids = append(ids, line.MenuID)
	}
	found, err := reader.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menus")
	}

	items := make([]models.OrderItem, 0, len(snapshot))
	var total int64
	for _, line := range snapshot {
		menu, ok := found[line.MenuID]
		if !ok {
			return nil, 0, pkgerrors.New(pkgerrors.CodeMenuNotFound, "menu not found").
				WithDetails(map[string]any{"menu_id": line.MenuID})
		}
		if menu.StoreID != storeID {
			return nil, 0, pkgerrors.New(pkgerrors.CodeDifferentStoreItems, "menu belongs to another store")
		}
		if line.Quantity < 1 || line.Quantity > cart.MaxQuantity {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity out of range").
				WithDetails(map[string]any{"menu_id": line.MenuID, "quantity": line.Quantity, "max_quantity": cart.MaxQuantity})
		}
		item := models.OrderItem{
			MenuName:  menu.Name,
			UnitPrice: menu.Price,
			Quantity:  line.Quantity,
		}
		lineTotal, ok := checkedLineTotal(item.UnitPrice, item.Quantity)
		if !ok || total > math.MaxInt64-lineTotal {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order total out of range").
				WithDetails(map[string]any{"menu_id": line.MenuID})
		}
		total += lineTotal
		items = append(items, item)
	}
	return items, total, nil
}

// checkedLineTotal multiplies a non-negative price by a positive quantity,
// reporting false on overflow.
func checkedLineTotal(price int64, quantity int) (int64, bool) {
	if price < 0 || quantity < 0 {
		return 0, false
	}
	q := int64(quantity)
	if q != 0 && price > math.MaxInt64/q {
		return 0, false
	}
	return price * q, true
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
		}
		return nil, s.fail(s.logg.WithOrderID(ctx, orderID.String()), "get_order_detail", err)
	}
	history, err := ParseStatusHistory(order.StatusHistory)
	if err != nil {
		return nil, s.fail(s.logg.WithOrderID(ctx, orderID.String()), "get_order_detail", err)
	}
	return newOrderDetail(order, history), nil
}

// GetOrderDetailForActor returns the order only when the actor may see it.
func (s *service) GetOrderDetailForActor(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error) {
	detail, err := s.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	input := visibility.OrderVisibilityInput{
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		OrderUserID: detail.UserID,
	}
	if actor.Role == enums.UserRoleOwner || actor.Role == enums.UserRoleManager {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			store, err := s.stores(tx).FindByID(ctx, detail.StoreID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			input.StoreOwnerID = store.OwnerUserID
			return nil
		})
		if err != nil {
			return nil, s.fail(s.logg.WithOrderID(ctx, orderID.String()), "get_order_detail", err)
		}
	}
	if err := visibility.EnsureOrderVisible(input); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateOrderStatus authorizes the actor, checks the transition table and
// appends the new status to the order history.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor Actor) (*StatusChangeResult, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		ownsStore := false
		if actor.Role == enums.UserRoleOwner || actor.Role == enums.UserRoleManager {
			store, err := s.stores(tx).FindByID(ctx, order.StoreID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
			}
			ownsStore = store != nil && store.OwnerUserID == actor.UserID
		}
		if err := AuthorizeStatusChange(actor.Role, ownsStore); err != nil {
			return err
		}

		if !CanTransition(order.Status, status) {
			return pkgerrors.New(pkgerrors.CodeInvalidStatusTransition, "order status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": status, "allowed": AllowedTargets(order.Status)})
		}

		history, err := ParseStatusHistory(order.StatusHistory)
		if err != nil {
			return err
		}
		history.Append(status, s.now())
		serialized, err := history.Serialize()
		if err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, order.ID, order.Status, status, serialized); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "update_order_status", err)
	}

	s.logg.Info(s.logg.WithField(ctx, "status", status.String()), "order status updated")
	return &StatusChangeResult{OrderID: orderID, Status: status}, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) (pagination.Page[OrderSummary], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[OrderSummary]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return pagination.Page[OrderSummary]{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to").
			WithDetails(map[string]any{"from": *filter.From, "to": *filter.To})
	}
	rows, err := s.repo.ListCustomerOrders(ctx, userID, filter, params)
	if err != nil {
		return pagination.Page[OrderSummary]{}, s.fail(s.logg.WithUserID(ctx, userID.String()), "list_customer_orders", err)
	}
	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, newOrderSummary(row))
	}
	return pagination.BuildPage(summaries, params.Limit, func(o OrderSummary) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

// DisableRefund closes the refund window of an order whatever its status.
func (s *service) DisableRefund(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.DisableRefund(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "disable refund")
	}
	return nil
}

// fail passes domain errors through and hides anything else behind INTERNAL_ERROR.
func (s *service) fail(ctx context.Context, op string, err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	s.logg.Error(s.logg.WithField(ctx, "op", op), "order operation failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order operation failed")
}

func validateCreateInput(input *CreateOrderInput) error {
	if input.OrderChannel == "" {
		input.OrderChannel = enums.OrderChannelOnline
	}
	switch {
	case input.TotalPrice < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "total price must not be negative")
	case !input.PaymentMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	case !input.OrderChannel.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order channel")
	case !input.ReceiptMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid receipt method")
	case input.ReceiptMethod == enums.ReceiptMethodDelivery && input.DeliveryAddress == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
	}
	return nil
}
