package reviews

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yumhub/yumhub-backend/api/middleware"
	"github.com/yumhub/yumhub-backend/api/responses"
	"github.com/yumhub/yumhub-backend/api/validators"
	internalreviews "github.com/yumhub/yumhub-backend/internal/reviews"
	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
)

type createReviewRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Rating  int       `json:"rating" validate:"gte=1,lte=5"`
	Content string    `json:"content" validate:"required,max=2000"`
}

type createReviewResponse struct {
	ReviewID string `json:"review_id"`
}

// Create records the caller's review of one of their orders.
func Create(svc internalreviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
			return
		}
		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reviewID, err := svc.CreateReview(r.Context(), userID, internalreviews.CreateReviewInput{
			OrderID: payload.OrderID,
			Rating:  payload.Rating,
			Content: validators.SanitizeString(payload.Content, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createReviewResponse{ReviewID: reviewID.String()})
	}
}

// ListMine returns the caller's reviews, newest first.
func ListMine(svc internalreviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
			return
		}
		views, err := svc.ListUserReviews(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// ListByStore returns the reviews left for a store.
func ListByStore(svc internalreviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.ListStoreReviews(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}
