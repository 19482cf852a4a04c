package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yunseo/theater-booking/internal/config"
	"github.com/yunseo/theater-booking/internal/handler"
	custommw "github.com/yunseo/theater-booking/internal/middleware"
)

// Handlers collects everything RegisterRoutes wires up.
type Handlers struct {
	Catalog     *handler.CatalogHandler
	Reservation *handler.ReservationHandler
	Review      *handler.ReviewHandler
	Admin       *handler.AdminHandler
}

// RegisterRoutes mounts the public patron API under /v1 and the
// operator API under /v1/admin.  Catalog and review reads sit behind
// the Redis response cache; the reservation write path sits behind the
// token bucket and is never cached.
func RegisterRoutes(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cached := custommw.NewRedisCache(config.LoadCacheConfig(), rdb)
	limited := custommw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	v1 := e.Group("/v1")

	v1.GET("/performances", h.Catalog.ListPerformances, cached)
	v1.GET("/performances/:id", h.Catalog.GetPerformance, cached)
	v1.GET("/performances/:id/sessions", h.Catalog.ListSessions)

	v1.POST("/reservations", h.Reservation.Create, limited)
	v1.GET("/reservations", h.Reservation.ListMine)
	v1.DELETE("/reservations/:id", h.Reservation.Cancel)

	v1.GET("/performances/:id/reviews", h.Review.List, cached)
	v1.GET("/performances/:id/reviews/eligibility", h.Review.Eligibility)
	v1.POST("/performances/:id/reviews", h.Review.Submit, limited)
	v1.PATCH("/reviews/:id", h.Review.Edit)
	v1.DELETE("/reviews/:id", h.Review.Delete)

	// Operator routes: deployed behind a trusted network boundary, no
	// per-request auth here.
	admin := v1.Group("/admin")
	admin.GET("/reservations", h.Admin.ListReservations)
	admin.POST("/reservations", h.Admin.Create)
	admin.DELETE("/reservations/:id", h.Admin.Cancel)
	admin.PATCH("/reservations/:id/paid", h.Admin.SetPaid)
	admin.GET("/performances/:id/occupancy", h.Admin.Occupancy)
}
