package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/config"
	"github.com/lumo-cinema/ticketing/internal/database"
	"github.com/lumo-cinema/ticketing/internal/handler"
	"github.com/lumo-cinema/ticketing/internal/pricing"
	"github.com/lumo-cinema/ticketing/internal/queue"
	"github.com/lumo-cinema/ticketing/internal/repository"
	"github.com/lumo-cinema/ticketing/internal/router"
	"github.com/lumo-cinema/ticketing/internal/worker"
)

func main() {
	_ = godotenv.Load() // loads .env if present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	theaterRepo := repository.NewTheaterRepo(db)
	layoutRepo := repository.NewSeatLayoutRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	holdRepo := repository.NewSeatHoldRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	loyalty := pricing.DefaultPolicy()
	handlers := router.Handlers{
		Catalog: handler.NewCatalogHandler(theaterRepo, layoutRepo, showtimeRepo, customerRepo),
		SeatMap: handler.NewSeatMapHandler(showtimeRepo, layoutRepo, holdRepo),
		Hold:    handler.NewHoldHandler(showtimeRepo, layoutRepo, holdRepo, cfg.Booking),
		Booking: handler.NewBookingHandler(showtimeRepo, layoutRepo, holdRepo, bookingRepo, customerRepo, paymentRepo, cfg.Booking, loyalty),
		Payment: handler.NewPaymentHandler(showtimeRepo, holdRepo, bookingRepo, customerRepo, paymentRepo),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, handlers, cfg, rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.RunHoldSweeper(ctx, holdRepo, cfg.Booking.SweepInterval)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
