// Package service wires the workflow services over the shared storage and
// cache layers.
package service

import (
	"log/slog"

	redisx "github.com/nlduyvu/vebus-go/internal/redis"
	postgres "github.com/nlduyvu/vebus-go/internal/repository/postgres"
	redis "github.com/nlduyvu/vebus-go/internal/repository/redis"

	"github.com/nlduyvu/vebus-go/internal/pricing"
	"github.com/nlduyvu/vebus-go/internal/provider"
	"github.com/nlduyvu/vebus-go/internal/service/admin"
	"github.com/nlduyvu/vebus-go/internal/service/booking"
	"github.com/nlduyvu/vebus-go/internal/service/bookingview"
	"github.com/nlduyvu/vebus-go/internal/service/pairing"
	"github.com/nlduyvu/vebus-go/internal/service/payment"
	"github.com/nlduyvu/vebus-go/internal/service/search"
	"github.com/nlduyvu/vebus-go/internal/service/seats"
)

type Services struct {
	Search      *search.Service
	Seats       *seats.Service
	Pairing     *pairing.Service
	Booking     *booking.Service
	Payment     *payment.Service
	BookingView *bookingview.Service
	Admin       *admin.Service
}

type Config struct {
	Search      search.Config
	Booking     booking.Config
	BookingView bookingview.Config
	Pairing     pairing.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	sessions *redis.SessionStore,
	pubsub *redisx.TripsPubSub,
	providers *provider.Registry,
	logger *slog.Logger,
	cfg Config,
) *Services {
	policy := pricing.Default()

	searchSvc := search.New(store.Trips(), cache, cfg.Search)
	paymentSvc := payment.New(sessions, store.Payments(), store.Tickets(), providers, logger)

	return &Services{
		Search:      searchSvc,
		Seats:       seats.New(store.Trips(), store.Seats()),
		Pairing:     pairing.New(store.Trips(), searchSvc, sessions, policy, cfg.Pairing),
		Booking:     booking.New(store.Tickets(), store.Seats(), store.Payments(), store.Promotions(), sessions, cfg.Booking),
		Payment:     paymentSvc,
		BookingView: bookingview.New(store.Tickets(), store.Trips(), store.Promotions(), paymentSvc, policy, cfg.BookingView),
		Admin:       admin.New(store, cache, pubsub),
	}
}
