package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/internal/orders"
	"github.com/yumhub/yumhub-backend/internal/users"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/db/models"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
)

const (
	minRating = 1
	maxRating = 5

	// sqlite reports the column, postgres the index name.
	uniqueOrderConstraint       = "reviews_order_id_key"
	uniqueOrderConstraintSQLite = "reviews.order_id"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateReviewInput is a customer's review of one of their orders.
type CreateReviewInput struct {
	OrderID uuid.UUID
	Rating  int
	Content string
}

// Service manages order reviews.
type Service interface {
	CreateReview(ctx context.Context, userID uuid.UUID, input CreateReviewInput) (uuid.UUID, error)
	ListUserReviews(ctx context.Context, userID uuid.UUID) ([]ReviewView, error)
	ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewView, error)
}

type ServiceParams struct {
	Logger *logger.Logger
	DB     txRunner
	Repo   *Repository
}

type service struct {
	logg *logger.Logger
	tx   txRunner
	repo *Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{logg: params.Logger, tx: params.DB, repo: params.Repo}, nil
}

// CreateReview stores a review for an order the user placed. Each order
// takes at most one review.
func (s *service) CreateReview(ctx context.Context, userID uuid.UUID, input CreateReviewInput) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	content := strings.TrimSpace(input.Content)
	switch {
	case input.OrderID == uuid.Nil:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	case input.Rating < minRating || input.Rating > maxRating:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	case content == "":
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}
	ctx = s.logg.WithOrderID(s.logg.WithUserID(ctx, userID.String()), input.OrderID.String())

	var reviewID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := users.NewRepository(tx).FindByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		order, err := orders.NewRepository(tx).FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID == nil || *order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeAccessDenied, "order belongs to another user")
		}

		repo := s.repo.WithTx(tx)
		exists, err := repo.ExistsForOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeReviewAlreadyExists, "order already reviewed")
		}

		review, err := repo.Create(ctx, &models.Review{
			OrderID: order.ID,
			UserID:  userID,
			StoreID: order.StoreID,
			Rating:  input.Rating,
			Content: content,
		})
		if err != nil {
			if isDuplicateReview(err) {
				return pkgerrors.New(pkgerrors.CodeReviewAlreadyExists, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		reviewID = review.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, s.fail(ctx, "create_review", err)
	}
	s.logg.Info(ctx, "review created")
	return reviewID, nil
}

func (s *service) ListUserReviews(ctx context.Context, userID uuid.UUID) ([]ReviewView, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(s.logg.WithUserID(ctx, userID.String()), "list_user_reviews", err)
	}
	return nonNil(rows), nil
}

func (s *service) ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewView, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, s.fail(s.logg.WithStoreID(ctx, storeID.String()), "list_store_reviews", err)
	}
	return nonNil(rows), nil
}

func (s *service) fail(ctx context.Context, op string, err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	s.logg.Error(s.logg.WithField(ctx, "op", op), "review operation failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review operation failed")
}

func isDuplicateReview(err error) bool {
	return db.IsUniqueViolation(err, uniqueOrderConstraint) || db.IsUniqueViolation(err, uniqueOrderConstraintSQLite)
}

func nonNil(rows []ReviewView) []ReviewView {
	if rows == nil {
		return []ReviewView{}
	}
	return rows
}
