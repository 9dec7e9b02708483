package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/cinebook/seat-reservation/internal/config"
	"github.com/cinebook/seat-reservation/internal/handler"
	"github.com/cinebook/seat-reservation/internal/middleware"
)

// Handlers bundles every HTTP handler the API exposes so route
// registration receives one argument instead of five.
type Handlers struct {
	Seat         *handler.SeatHandler
	Booking      *handler.BookingHandler
	Cancellation *handler.CancellationHandler
	Waitlist     *handler.WaitlistHandler
	Pricing      *handler.PricingHandler
}

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check and the public pricing preview.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Used by load balancers and monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
	// Pricing is holder-independent and safe to expose to guests
	// browsing before they authenticate.
	e.GET("/v1/shows/:id/pricing", h.Pricing.GetPricing)
}

// RegisterReservation registers the reservation API under /v1.  Every
// route requires a valid bearer token; the rate limiter sits in front
// of all of them and the Redis response cache covers snapshot reads.
// The Redis client may be nil, in which case both the limiter and the
// cache pass requests straight through.
func RegisterReservation(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Seat snapshots are the hottest read; cache them keyed per holder
	// so HELD_BY_YOU never leaks between users.
	cacheCfg := config.LoadCacheConfig()
	cacheCfg.KeyStrategy = "route_query_user"
	snapshotCache := middleware.NewRedisCache(cacheCfg, rdb)

	// seat inventory
	auth.GET("/shows/:id/seats", h.Seat.GetSeats, snapshotCache)
	auth.POST("/shows/:id/seats", h.Seat.CreateSeats)
	auth.POST("/shows/:id/hold", h.Seat.HoldSeats)
	auth.DELETE("/shows/:id/hold", h.Seat.ReleaseHolds)

	// booking
	auth.POST("/shows/:id/book", h.Booking.BookSeats)
	auth.GET("/tickets/:id", h.Booking.GetTicket)

	// cancellation and refunds
	auth.POST("/tickets/:id/cancel", h.Cancellation.CancelTicket)
	auth.GET("/tickets/:id/refund", h.Cancellation.GetRefundStatus)

	// waitlist
	auth.POST("/shows/:id/waitlist", h.Waitlist.JoinWaitlist)
	auth.GET("/waitlist", h.Waitlist.ListEntries)
	auth.DELETE("/waitlist/:id", h.Waitlist.CancelEntry)
}
