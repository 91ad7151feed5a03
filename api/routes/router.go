package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yumhub/yumhub-backend/api/controllers"
	cartcontrollers "github.com/yumhub/yumhub-backend/api/controllers/cart"
	ordercontrollers "github.com/yumhub/yumhub-backend/api/controllers/orders"
	reviewcontrollers "github.com/yumhub/yumhub-backend/api/controllers/reviews"
	"github.com/yumhub/yumhub-backend/api/middleware"
	"github.com/yumhub/yumhub-backend/internal/cart"
	"github.com/yumhub/yumhub-backend/internal/orders"
	"github.com/yumhub/yumhub-backend/internal/reviews"
	"github.com/yumhub/yumhub-backend/pkg/config"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/enums"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	ordersService orders.Service,
	reviewsService reviews.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(dbP, redisClient)))
	})

	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}
	idempotency := middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleCustomer))

			r.Get("/api/v1/cart", cartcontrollers.Get(cartService, logg))
			r.Delete("/api/v1/cart", cartcontrollers.Clear(cartService, logg))
			r.Post("/api/v1/cart/items", cartcontrollers.AddItem(cartService, logg))
			r.Patch("/api/v1/cart/items/{menuId}", cartcontrollers.UpdateItem(cartService, logg))
			r.Delete("/api/v1/cart/items/{menuId}", cartcontrollers.RemoveItem(cartService, logg))

			r.With(idempotency).Post("/api/v1/orders", ordercontrollers.Create(ordersService, logg))
			r.Get("/api/v1/orders", ordercontrollers.List(ordersService, logg))

			r.With(idempotency).Post("/api/v1/reviews", reviewcontrollers.Create(reviewsService, logg))
			r.Get("/api/v1/reviews/me", reviewcontrollers.ListMine(reviewsService, logg))
		})

		r.Get("/api/v1/orders/{orderId}", ordercontrollers.Detail(ordersService, logg))
		r.Patch("/api/v1/orders/{orderId}/status", ordercontrollers.UpdateStatus(ordersService, logg))
		r.Get("/api/v1/stores/{storeId}/reviews", reviewcontrollers.ListByStore(reviewsService, logg))
	})

	return r
}

func readinessDeps(dbP db.Pinger, redisClient *redis.Client) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	return deps
}
