package reviews

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/internal/testdb"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/db/models"
	"github.com/yumhub/yumhub-backend/pkg/enums"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
)

type reviewsEnv struct {
	svc      Service
	db       *gorm.DB
	customer *models.User
	store    *models.Store
	order    *models.Order
}

func newReviewsEnv(t *testing.T) *reviewsEnv {
	t.Helper()
	conn := testdb.Open(t)
	customer := testdb.MustCreateUser(t, conn, enums.UserRoleCustomer)
	owner := testdb.MustCreateUser(t, conn, enums.UserRoleOwner)
	store := testdb.MustCreateStore(t, conn, owner.ID)

	svc, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{ServiceName: "reviews-test", Output: io.Discard}),
		DB:     db.NewFromGorm(conn),
		Repo:   NewRepository(conn),
	})
	require.NoError(t, err)
	return &reviewsEnv{
		svc:      svc,
		db:       conn,
		customer: customer,
		store:    store,
		order:    mustCreateOrder(t, conn, store.ID, customer.ID),
	}
}

func mustCreateOrder(t *testing.T, conn *gorm.DB, storeID, userID uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{
		StoreID:       storeID,
		UserID:        &userID,
		TotalPrice:    15000,
		PaymentMethod: enums.PaymentMethodCreditCard,
		OrderChannel:  enums.OrderChannelOnline,
		ReceiptMethod: enums.ReceiptMethodTakeOut,
		Status:        enums.OrderStatusCompleted,
		StatusHistory: "{}",
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateReviewAndList(t *testing.T) {
	env := newReviewsEnv(t)
	ctx := context.Background()

	reviewID, err := env.svc.CreateReview(ctx, env.customer.ID, CreateReviewInput{
		OrderID: env.order.ID,
		Rating:  5,
		Content: "  Broth was excellent  ",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, reviewID)

	mine, err := env.svc.ListUserReviews(ctx, env.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, reviewID, mine[0].ID)
	assert.Equal(t, env.order.ID, mine[0].OrderID)
	assert.Equal(t, env.store.ID, mine[0].StoreID)
	assert.Equal(t, env.store.Name, mine[0].StoreName)
	assert.Equal(t, "Broth was excellent", mine[0].Content)
	assert.Equal(t, 5, mine[0].Rating)

	byStore, err := env.svc.ListStoreReviews(ctx, env.store.ID)
	require.NoError(t, err)
	assert.Len(t, byStore, 1)
}

func TestCreateReviewOncePerOrder(t *testing.T) {
	env := newReviewsEnv(t)
	ctx := context.Background()
	input := CreateReviewInput{OrderID: env.order.ID, Rating: 4, Content: "good"}

	_, err := env.svc.CreateReview(ctx, env.customer.ID, input)
	require.NoError(t, err)

	_, err = env.svc.CreateReview(ctx, env.customer.ID, input)
	requireCode(t, err, pkgerrors.CodeReviewAlreadyExists)
}

func TestUniqueIndexBacksDuplicateCheck(t *testing.T) {
	env := newReviewsEnv(t)
	repo := NewRepository(env.db)
	ctx := context.Background()
	review := func() *models.Review {
		return &models.Review{OrderID: env.order.ID, UserID: env.customer.ID, StoreID: env.store.ID, Rating: 3, Content: "ok"}
	}

	_, err := repo.Create(ctx, review())
	require.NoError(t, err)
	_, err = repo.Create(ctx, review())
	require.Error(t, err)
	assert.True(t, isDuplicateReview(err), "unexpected error %v", err)
}

func TestCreateReviewRejectsForeignOrder(t *testing.T) {
	env := newReviewsEnv(t)
	stranger := testdb.MustCreateUser(t, env.db, enums.UserRoleCustomer)

	_, err := env.svc.CreateReview(context.Background(), stranger.ID, CreateReviewInput{OrderID: env.order.ID, Rating: 1, Content: "cold"})
	requireCode(t, err, pkgerrors.CodeAccessDenied)
}

func TestCreateReviewLookups(t *testing.T) {
	env := newReviewsEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateReview(ctx, uuid.New(), CreateReviewInput{OrderID: env.order.ID, Rating: 3, Content: "x"})
	requireCode(t, err, pkgerrors.CodeUserNotFound)

	_, err = env.svc.CreateReview(ctx, env.customer.ID, CreateReviewInput{OrderID: uuid.New(), Rating: 3, Content: "x"})
	requireCode(t, err, pkgerrors.CodeOrderNotFound)
}

func TestCreateReviewValidation(t *testing.T) {
	env := newReviewsEnv(t)
	ctx := context.Background()

	for _, input := range []CreateReviewInput{
		{OrderID: env.order.ID, Rating: 0, Content: "x"},
		{OrderID: env.order.ID, Rating: 6, Content: "x"},
		{OrderID: env.order.ID, Rating: 3, Content: "   "},
		{Rating: 3, Content: "x"},
	} {
		_, err := env.svc.CreateReview(ctx, env.customer.ID, input)
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	_, err := env.svc.CreateReview(ctx, uuid.Nil, CreateReviewInput{OrderID: env.order.ID, Rating: 3, Content: "x"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestListReviewsEmpty(t *testing.T) {
	env := newReviewsEnv(t)

	rows, err := env.svc.ListUserReviews(context.Background(), env.customer.ID)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
