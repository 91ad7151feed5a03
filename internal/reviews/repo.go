package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
)

// ReviewView is a review joined with the name of its store.
type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	StoreID   uuid.UUID `json:"store_id"`
	StoreName string    `json:"store_name"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists reviews.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// ExistsForOrder reports whether the order already has a review.
func (r *Repository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ReviewView, error) {
	return r.list(ctx, "reviews.user_id = ?", userID)
}

func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]ReviewView, error) {
	return r.list(ctx, "reviews.store_id = ?", storeID)
}

func (r *Repository) list(ctx context.Context, where string, arg any) ([]ReviewView, error) {
	var rows []ReviewView
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.order_id, reviews.user_id, reviews.store_id, stores.name AS store_name, reviews.rating, reviews.content, reviews.created_at").
		Joins("LEFT JOIN stores ON stores.id = reviews.store_id").
		Where(where, arg).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
