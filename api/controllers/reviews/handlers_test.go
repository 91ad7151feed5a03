package reviews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumhub/yumhub-backend/api/middleware"
	internalreviews "github.com/yumhub/yumhub-backend/internal/reviews"
	"github.com/yumhub/yumhub-backend/pkg/enums"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
)

type stubReviewService struct {
	err      error
	input    *internalreviews.CreateReviewInput
	reviewID uuid.UUID
	views    []internalreviews.ReviewView
	storeID  uuid.UUID
}

func (s *stubReviewService) CreateReview(_ context.Context, _ uuid.UUID, input internalreviews.CreateReviewInput) (uuid.UUID, error) {
	s.input = &input
	return s.reviewID, s.err
}

func (s *stubReviewService) ListUserReviews(context.Context, uuid.UUID) ([]internalreviews.ReviewView, error) {
	return s.views, s.err
}

func (s *stubReviewService) ListStoreReviews(_ context.Context, storeID uuid.UUID) ([]internalreviews.ReviewView, error) {
	s.storeID = storeID
	return s.views, s.err
}

func customerRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithActor(req.Context(), uuid.New(), enums.UserRoleCustomer))
}

func TestCreateReview(t *testing.T) {
	svc := &stubReviewService{reviewID: uuid.New()}
	orderID := uuid.New()
	body := `{"order_id":"` + orderID.String() + `","rating":5,"content":"  great ramen  "}`

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, customerRequest(http.MethodPost, "/api/v1/reviews", body))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.JSONEq(t, `{"data":{"review_id":"`+svc.reviewID.String()+`"}}`, resp.Body.String())
	require.NotNil(t, svc.input)
	assert.Equal(t, internalreviews.CreateReviewInput{OrderID: orderID, Rating: 5, Content: "great ramen"}, *svc.input)
}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	svc := &stubReviewService{}
	body := `{"order_id":"` + uuid.NewString() + `","rating":6,"content":"ok"}`

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, customerRequest(http.MethodPost, "/api/v1/reviews", body))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.input)
}

func TestCreateReviewDuplicate(t *testing.T) {
	svc := &stubReviewService{err: pkgerrors.New(pkgerrors.CodeReviewAlreadyExists, "order already reviewed")}
	body := `{"order_id":"` + uuid.NewString() + `","rating":3,"content":"fine"}`

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, customerRequest(http.MethodPost, "/api/v1/reviews", body))

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeReviewAlreadyExists))
}

func TestListMine(t *testing.T) {
	svc := &stubReviewService{views: []internalreviews.ReviewView{}}

	resp := httptest.NewRecorder()
	ListMine(svc, nil).ServeHTTP(resp, customerRequest(http.MethodGet, "/api/v1/reviews/me", ""))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":[]}`, resp.Body.String())

	resp = httptest.NewRecorder()
	ListMine(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListByStore(t *testing.T) {
	storeID := uuid.New()
	svc := &stubReviewService{views: []internalreviews.ReviewView{{Rating: 4, Content: "good"}}}

	rc := chi.NewRouteContext()
	rc.URLParams.Add("storeId", storeID.String())
	req := customerRequest(http.MethodGet, "/", "")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	ListByStore(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, storeID, svc.storeID)
	assert.Contains(t, resp.Body.String(), `"content":"good"`)
}
