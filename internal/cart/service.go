package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/metrics"
)

const addedMessage = "menu added to cart"

// Service keeps a user's cached cart consistent with its durable copy.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (string, error)
	UpdateItem(ctx context.Context, userID, menuID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, menuID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	FlushToStore(ctx context.Context, userID uuid.UUID) error
	HydrateFromStore(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	ReconcileAll(ctx context.Context) (ReconcileResult, error)
}

// AddItemInput describes a line added to the cart.
type AddItemInput struct {
	MenuID   uuid.UUID
	StoreID  uuid.UUID
	Quantity int
}

// ReconcileResult reports how many cached carts were flushed out of those found.
type ReconcileResult struct {
	Synced int
	Total  int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams configure the cart service.
type ServiceParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Repo    Repository
	Cache   CacheStore
	Metrics *metrics.CartMetrics
}

type service struct {
	logg    *logger.Logger
	tx      txRunner
	repo    Repository
	cache   CacheStore
	metrics *metrics.CartMetrics
}

// NewService builds the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cart cache required")
	}
	return &service{
		logg:    params.Logger,
		tx:      params.DB,
		repo:    params.Repo,
		cache:   params.Cache,
		metrics: params.Metrics,
	}, nil
}

// GetCart returns the cached snapshot, hydrating it from the database on a miss.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, userID, "get_cart", err)
	}
	return snapshot, nil
}

// AddItem appends a line or accumulates its quantity. A line from another
// store replaces the whole cart.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (string, error) {
	if input.MenuID == uuid.Nil || input.StoreID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "menu id and store id are required")
	}
	if err := checkQuantity(input.Quantity); err != nil {
		return "", err
	}

	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return "", s.fail(ctx, userID, "add_item", err)
	}
	snapshot = snapshot.clone()

	if len(snapshot) > 0 && snapshot.StoreID() != input.StoreID {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":        userID.String(),
			"previous_store": snapshot.StoreID().String(),
			"store_id":       input.StoreID.String(),
		})
		s.logg.Info(logCtx, "cart store switched; prior lines dropped")
		snapshot = Snapshot{}
	}

	if idx := snapshot.indexOf(input.MenuID); idx >= 0 {
		if snapshot[idx].Quantity > MaxQuantity-input.Quantity {
			return "", quantityTooLarge()
		}
		snapshot[idx].Quantity += input.Quantity
	} else {
		snapshot = append(snapshot, LineItem{
			MenuID:   input.MenuID,
			StoreID:  input.StoreID,
			Quantity: input.Quantity,
		})
	}

	if err := s.cache.Write(ctx, userID, snapshot); err != nil {
		return "", s.fail(ctx, userID, "add_item", err)
	}
	return addedMessage, nil
}

// UpdateItem overwrites the quantity of an existing line. Unknown menus are ignored.
func (s *service) UpdateItem(ctx context.Context, userID, menuID uuid.UUID, quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return s.fail(ctx, userID, "update_item", err)
	}
	idx := snapshot.indexOf(menuID)
	if idx < 0 {
		return nil
	}
	snapshot = snapshot.clone()
	snapshot[idx].Quantity = quantity
	if err := s.cache.Write(ctx, userID, snapshot); err != nil {
		return s.fail(ctx, userID, "update_item", err)
	}
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if quantity > MaxQuantity {
		return quantityTooLarge()
	}
	return nil
}

func quantityTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line limit").
		WithDetails(map[string]any{"max_quantity": MaxQuantity})
}

func (s *service) RemoveItem(ctx context.Context, userID, menuID uuid.UUID) error {
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return s.fail(ctx, userID, "remove_item", err)
	}
	kept := make(Snapshot, 0, len(snapshot))
	for _, line := range snapshot {
		if line.MenuID != menuID {
			kept = append(kept, line)
		}
	}
	if err := s.cache.Write(ctx, userID, kept); err != nil {
		return s.fail(ctx, userID, "remove_item", err)
	}
	return nil
}

// Clear stores an empty snapshot so the next read does not hydrate stale rows.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cache.Write(ctx, userID, Snapshot{}); err != nil {
		return s.fail(ctx, userID, "clear", err)
	}
	return nil
}

// FlushToStore replaces the durable cart items with the cached snapshot.
// A user without a cached snapshot has nothing to flush.
func (s *service) FlushToStore(ctx context.Context, userID uuid.UUID) error {
	snapshot, err := s.cache.Read(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		return s.fail(ctx, userID, "flush", err)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.findCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if err := repo.ReplaceItems(ctx, record.ID, itemsFromSnapshot(record.ID, snapshot)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCartSyncFailed, err, "replace cart items")
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, userID, "flush", storeFailure(err))
	}
	return nil
}

// HydrateFromStore loads the durable items into the cache.
func (s *service) HydrateFromStore(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	snapshot, err := s.hydrate(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, userID, "hydrate", err)
	}
	return snapshot, nil
}

// ReconcileAll flushes every cached cart. One user's failure is logged and
// does not stop the sweep.
func (s *service) ReconcileAll(ctx context.Context) (ReconcileResult, error) {
	keys, err := s.cache.ListKeys(ctx)
	if err != nil {
		return ReconcileResult{}, s.fail(ctx, uuid.Nil, "reconcile", err)
	}

	result := ReconcileResult{Total: len(keys)}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			s.metrics.ObserveReconcile(result.Synced, result.Total)
			return result, err
		}
		userID, err := s.cache.KeyToUserID(key)
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "cache_key", key), "skipping malformed cart key", err)
			continue
		}
		if err := s.FlushToStore(ctx, userID); err != nil {
			s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "cart reconcile failed", err)
			continue
		}
		result.Synced++
	}

	s.metrics.ObserveReconcile(result.Synced, result.Total)
	logCtx := s.logg.WithFields(ctx, map[string]any{"synced": result.Synced, "total": result.Total})
	s.logg.Info(logCtx, "cart reconcile complete")
	return result, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	exists, err := s.cache.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		snapshot, err := s.cache.Read(ctx, userID)
		if err == nil {
			return snapshot, nil
		}
		// The key may expire between the two calls.
		if !errors.Is(err, ErrCacheMiss) {
			return nil, err
		}
	}
	return s.hydrate(ctx, userID)
}

func (s *service) hydrate(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var snapshot Snapshot
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.findCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		items, err := repo.ListItems(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCartSyncFailed, err, "list cart items")
		}
		snapshot = snapshotFromItems(items)
		return nil
	})
	if err != nil {
		return nil, storeFailure(err)
	}
	if err := s.cache.Write(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	s.metrics.IncHydration()
	return snapshot, nil
}

func (s *service) findCart(ctx context.Context, repo Repository, userID uuid.UUID) (*models.Cart, error) {
	record, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeCartSyncFailed, err, "load cart")
	}
	return record, nil
}

// fail keeps domain errors, maps cache outages to CART_SYNC_FAILED and hides
// everything else behind INTERNAL_ERROR.
func (s *service) fail(ctx context.Context, userID uuid.UUID, op string, err error) error {
	if err == nil {
		return nil
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": userID.String(), "op": op})
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodeCartSyncFailed {
			s.logg.Warn(logCtx, err.Error())
		}
		return err
	}
	if errors.Is(err, ErrCacheUnavailable) {
		s.logg.Warn(logCtx, err.Error())
		return pkgerrors.Wrap(pkgerrors.CodeCartSyncFailed, err, "cart cache unavailable")
	}
	s.logg.Error(logCtx, "cart operation failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cart operation failed")
}

func storeFailure(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeCartSyncFailed, err, "cart storage unavailable")
}
