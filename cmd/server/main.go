package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cinebook/seat-reservation/internal/config"
	"github.com/cinebook/seat-reservation/internal/database"
	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/handler"
	"github.com/cinebook/seat-reservation/internal/queue"
	"github.com/cinebook/seat-reservation/internal/repository"
	"github.com/cinebook/seat-reservation/internal/repository/memory"
	"github.com/cinebook/seat-reservation/internal/router"
	"github.com/cinebook/seat-reservation/internal/scheduler"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	// Backing stores: MySQL in production, in-memory for single-node
	// runs without a database.
	var (
		shows    engine.ShowStore
		seats    engine.SeatStore
		holds    engine.HoldStore
		tickets  engine.TicketStore
		refunds  engine.RefundStore
		entries  engine.WaitlistStore
		pricings engine.PricingStore
	)
	switch cfg.Store {
	case "memory":
		m := memory.NewStore()
		shows, seats, holds, tickets, refunds, entries, pricings = m, m, m, m, m, m, m
		log.Printf("store: in-memory (no persistence)")
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		shows = repository.NewShowRepo(db)
		seats = repository.NewShowSeatRepo(db)
		holds = repository.NewSeatHoldRepo(db)
		tickets = repository.NewTicketRepo(db)
		refunds = repository.NewRefundRepo(db)
		entries = repository.NewWaitlistRepo(db)
		pricings = repository.NewPricingConfigRepo(db)
	}

	clock := engine.RealClock()
	inventory := engine.NewSeatInventory(seats, holds, clock)
	pricing := engine.NewPricingEngine(pricings, seats)
	waitlist := engine.NewWaitlistEngine(shows, entries, inventory, queue.NewPublisher(), clock)
	booking := engine.NewBookingEngine(shows, tickets, inventory, pricing, clock)
	cancellation := engine.NewCancellationEngine(shows, tickets, refunds, inventory, waitlist, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed the nine default pricing rules on first boot.
	if err := pricing.EnsureDefaults(ctx); err != nil {
		log.Fatalf("pricing: seed defaults: %v", err)
	}

	// Background maintenance: expired-hold sweep every 5 minutes,
	// waitlist expiry sweep hourly, plus the notification consumer.
	go scheduler.New("hold-sweep", engine.SweepInterval, inventory.SweepExpired).Start(ctx)
	go scheduler.New("waitlist-expiry", engine.WaitlistExpiryInterval, waitlist.ExpireStale).Start(ctx)
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("rabbitmq: consumer disabled: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, rate limiting and response cache disabled")
	}

	h := router.Handlers{
		Seat:         handler.NewSeatHandler(inventory, shows),
		Booking:      handler.NewBookingHandler(booking),
		Cancellation: handler.NewCancellationHandler(booking, cancellation),
		Waitlist:     handler.NewWaitlistHandler(waitlist),
		Pricing:      handler.NewPricingHandler(pricing, shows),
	}
	router.RegisterRoutes(e, h)
	router.RegisterReservation(e, h, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
