package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/yunseo/theater-booking/internal/config"
	"github.com/yunseo/theater-booking/internal/database"
	"github.com/yunseo/theater-booking/internal/handler"
	"github.com/yunseo/theater-booking/internal/queue"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/router"
	"github.com/yunseo/theater-booking/internal/service"
	"github.com/yunseo/theater-booking/internal/showtime"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	store := repository.NewStore(db)
	clock := showtime.NewSystemClock()
	publisher := queue.NewPublisher()

	bookings := service.NewBookingService(store, clock, publisher)
	reviews := service.NewReviewService(store, clock)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, router.Handlers{
		Catalog:     handler.NewCatalogHandler(store, bookings),
		Reservation: handler.NewReservationHandler(store, bookings),
		Review:      handler.NewReviewHandler(store, reviews),
		Admin:       handler.NewAdminHandler(store, bookings),
	}, rdb)

	// Background consumer mirrors reservation events into an audit log.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
