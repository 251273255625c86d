// Package bookingview re-derives display-level "bookings" from the flat
// ticket list: the tracking page's grouped view, the invoice for confirmed
// purchases, and the retry-payment and cancel actions on pending ones.
package bookingview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/pricing"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type TicketStore interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error
}

type TripGetter interface {
	Get(ctx context.Context, id int64) (*domain.Trip, error)
}

type PromotionGetter interface {
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
}

// PaymentResumer re-opens a payment session for a rebuilt booking.
type PaymentResumer interface {
	Resume(ctx context.Context, session *domain.BookingSession, window time.Duration) error
}

type Config struct {
	// GroupWindow bounds the bookedAt spread of one heuristic booking.
	GroupWindow time.Duration
	// PaymentWindow is the countdown granted to a retried payment.
	PaymentWindow time.Duration
}

type Service struct {
	tickets    TicketStore
	trips      TripGetter
	promotions PromotionGetter
	payments   PaymentResumer
	policy     pricing.Policy
	cfg        Config
	now        func() time.Time
}

func New(
	tickets TicketStore,
	trips TripGetter,
	promotions PromotionGetter,
	payments PaymentResumer,
	policy pricing.Policy,
	cfg Config,
) *Service {
	if cfg.GroupWindow <= 0 {
		cfg.GroupWindow = 60 * time.Second
	}
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = 1200 * time.Second
	}

	return &Service{
		tickets:    tickets,
		trips:      trips,
		promotions: promotions,
		payments:   payments,
		policy:     policy,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Bookings is the tracking view: the user's tickets folded into bookings,
// newest first.
func (s *Service) Bookings(ctx context.Context, userID int64) ([]Booking, error) {
	const op = "service.bookingview.Bookings"

	tickets, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return GroupTickets(tickets, s.cfg.GroupWindow), nil
}

// Invoice is the priced breakdown of one confirmed booking.
type Invoice struct {
	GroupID           string
	IssuedAt          time.Time
	Outbound          []domain.Ticket
	Return            []domain.Ticket
	OutboundTrip      *domain.Trip
	ReturnTrip        *domain.Trip
	RoundTrip         bool
	PromotionCode     string
	Subtotal          int64
	RoundTripDiscount int64
	PromotionDiscount int64
	OnlineDiscount    int64
	Total             int64
}

// Detail is the plain view rendered for bookings that are not confirmed.
type Detail struct {
	Booking Booking
	Trip    *domain.Trip
}

// Invoice prices a confirmed booking group: the 10% round-trip discount on
// the subtotal, any promotion discount, and the online-payment discount,
// additively, with the total clamped at zero. A booking that is not fully
// confirmed reports ErrNotConfirmed so the caller falls back to Detail.
func (s *Service) Invoice(ctx context.Context, groupID string) (*Invoice, error) {
	const op = "service.bookingview.Invoice"

	booking, err := s.group(ctx, op, groupID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.TicketConfirmed {
		return nil, fmt.Errorf("%s:%w", op, ErrNotConfirmed)
	}

	inv := &Invoice{
		GroupID:   booking.GroupID,
		IssuedAt:  s.now(),
		RoundTrip: booking.RoundTrip,
	}

	// The display heuristic flags any grouped purchase as round trip, but the
	// 10% discount applies only to purchases that genuinely have two legs.
	online, roundTripFare := false, false
	for _, t := range booking.Tickets {
		if t.TripType == domain.TripRoundTrip || t.IsReturnTrip {
			roundTripFare = true
		}
		if t.IsReturnTrip {
			inv.Return = append(inv.Return, t)
		} else {
			inv.Outbound = append(inv.Outbound, t)
		}
		inv.Subtotal += t.Price
		if t.BookingMethod == domain.BookingOnline {
			online = true
		}
		if t.PromotionCode != nil && inv.PromotionCode == "" {
			inv.PromotionCode = *t.PromotionCode
		}
	}

	if len(inv.Outbound) > 0 {
		inv.OutboundTrip, err = s.trips.Get(ctx, inv.Outbound[0].TripID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}
	if len(inv.Return) > 0 {
		inv.ReturnTrip, err = s.trips.Get(ctx, inv.Return[0].TripID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	if roundTripFare {
		inv.RoundTripDiscount = s.policy.RoundTripDiscount(inv.Subtotal)
	}
	if inv.PromotionCode != "" {
		promo, err := s.promotions.GetByCode(ctx, inv.PromotionCode)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		inv.PromotionDiscount = s.policy.PromotionDiscount(inv.Subtotal, promo)
	}
	if online {
		inv.OnlineDiscount = s.policy.OnlineDiscount(inv.Subtotal)
	}

	inv.Total = pricing.Clamp(
		inv.Subtotal - inv.RoundTripDiscount - inv.PromotionDiscount - inv.OnlineDiscount)

	return inv, nil
}

// Get returns the plain detail view of one booking regardless of status.
func (s *Service) Get(ctx context.Context, groupID string) (*Detail, error) {
	const op = "service.bookingview.Get"

	booking, err := s.group(ctx, op, groupID)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.Get(ctx, booking.TripID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Detail{Booking: *booking, Trip: trip}, nil
}

// RetryPayment rebuilds a payment session from every booked ticket of the
// group, not just one, and re-enters the payment controller at
// seats_reserved with a fresh window and transaction ID.
func (s *Service) RetryPayment(ctx context.Context, groupID string) (*domain.BookingSession, error) {
	const op = "service.bookingview.RetryPayment"

	booking, err := s.group(ctx, op, groupID)
	if err != nil {
		return nil, err
	}

	session := &domain.BookingSession{
		ID:             uuid.New(),
		BookingGroupID: booking.GroupID,
		State:          domain.SessionSeatsReserved,
		TransactionID:  uuid.New().String(),
		CreatedAt:      s.now(),
	}
	session.TripType = domain.TripOneWay
	for _, t := range booking.Tickets {
		if t.TripType == domain.TripRoundTrip || t.IsReturnTrip {
			session.TripType = domain.TripRoundTrip
		}
		if t.Status != domain.TicketBooked {
			continue
		}
		session.UserID = t.UserID
		session.Amount += t.Price
		if t.IsReturnTrip {
			session.ReturnTicketIDs = append(session.ReturnTicketIDs, t.ID)
		} else {
			session.OutboundTicketIDs = append(session.OutboundTicketIDs, t.ID)
		}
	}
	if len(session.OutboundTicketIDs)+len(session.ReturnTicketIDs) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNotRetryable)
	}

	if err := s.payments.Resume(ctx, session, s.cfg.PaymentWindow); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, nil
}

// Cancel moves every booked ticket of the group to cancelled, one status
// update per ticket awaited together. There is no rollback; a fan-out that
// partially fails leaves the rest cancelled.
func (s *Service) Cancel(ctx context.Context, groupID string) error {
	const op = "service.bookingview.Cancel"

	booking, err := s.group(ctx, op, groupID)
	if err != nil {
		return err
	}

	var cancellable []uuid.UUID
	for _, t := range booking.Tickets {
		if t.Status == domain.TicketBooked {
			cancellable = append(cancellable, t.ID)
		}
	}
	if len(cancellable) == 0 {
		return fmt.Errorf("%s:%w", op, ErrNotCancellable)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range cancellable {
		id := id
		g.Go(func() error {
			return s.tickets.UpdateStatus(gctx, id, domain.TicketBooked, domain.TicketCancelled)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) group(ctx context.Context, op, groupID string) (*Booking, error) {
	tickets, err := s.tickets.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
	}

	groups := GroupTickets(tickets, s.cfg.GroupWindow)
	return &groups[0], nil
}
