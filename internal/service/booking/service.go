package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

// TicketStore is the ticket persistence slice the booking service drives.
type TicketStore interface {
	Create(ctx context.Context, t *domain.Ticket) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error
	Link(ctx context.Context, id, linkedID uuid.UUID) error
}

type SeatStore interface {
	Transition(ctx context.Context, seatID int64, from, to domain.SeatStatus) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
}

type PromotionStore interface {
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
	IncrementUsage(ctx context.Context, code string) error
}

type SessionSaver interface {
	SaveBooking(ctx context.Context, session *domain.BookingSession, ttl time.Duration) error
}

type Config struct {
	// PaymentWindow is the seats-reserved countdown handed to the payment
	// session.
	PaymentWindow time.Duration
	// RollbackOnFailure cancels already-created tickets when part of the
	// checkout fan-out fails; without it the partial result is surfaced as a
	// PartialFailureError.
	RollbackOnFailure bool
}

type Service struct {
	tickets    TicketStore
	seats      SeatStore
	payments   PaymentStore
	promotions PromotionStore
	sessions   SessionSaver
	cfg        Config
	now        func() time.Time
}

func New(
	tickets TicketStore,
	seats SeatStore,
	payments PaymentStore,
	promotions PromotionStore,
	sessions SessionSaver,
	cfg Config,
) *Service {
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = 1200 * time.Second
	}

	return &Service{
		tickets:    tickets,
		seats:      seats,
		payments:   payments,
		promotions: promotions,
		sessions:   sessions,
		cfg:        cfg,
		now:        time.Now,
	}
}

// SeatSelection is one chosen seat with its caller-supplied fare.
type SeatSelection struct {
	SeatID     int64
	SeatNumber string
	Price      int64
}

// Leg is the seat selection for one directional trip of the purchase.
type Leg struct {
	TripID int64
	Return bool
	Seats  []SeatSelection
}

type CheckoutRequest struct {
	UserID        int64
	TripType      domain.TripType
	Method        domain.BookingMethod
	PromotionCode string
	Legs          []Leg
}

// CreateBooking issues one ticket for one (trip, seat) pair: the seat moves
// available -> booked and the ticket row is written. Each call is
// independent; Checkout fans these out and waits for all of them.
func (s *Service) CreateBooking(
	ctx context.Context,
	req *CheckoutRequest,
	leg Leg,
	seat SeatSelection,
	groupID string,
	promoCode *string,
	bookedAt time.Time,
) (*domain.Ticket, error) {
	const op = "service.booking.CreateBooking"

	if err := s.seats.Transition(ctx, seat.SeatID, domain.SeatAvailable, domain.SeatBooked); err != nil {
		if errors.Is(err, repository.ErrSeatUnavailable) {
			return nil, fmt.Errorf("%s:%w", op, ErrSeatUnavailable)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	ticket := &domain.Ticket{
		ID:             uuid.New(),
		UserID:         req.UserID,
		TripID:         leg.TripID,
		TripSeatID:     seat.SeatID,
		SeatNumber:     seat.SeatNumber,
		Price:          seat.Price,
		Status:         domain.TicketBooked,
		BookingMethod:  req.Method,
		TripType:       req.TripType,
		IsReturnTrip:   leg.Return,
		BookingGroupID: &groupID,
		PromotionCode:  promoCode,
		BookedAt:       bookedAt,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		// Give the seat back; the ticket row never existed.
		_ = s.seats.Transition(ctx, seat.SeatID, domain.SeatBooked, domain.SeatAvailable)
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return ticket, nil
}

// Checkout converts a confirmed seat selection into tickets: one
// CreateBooking call per (leg, seat) pair, fanned out and awaited together,
// so an N-seat round trip issues 2N calls. All tickets share one booking
// group ID and one bookedAt instant. On success a pending payment row is
// written and a seats_reserved session is opened with the payment-window
// countdown.
func (s *Service) Checkout(ctx context.Context, req *CheckoutRequest) (*domain.BookingSession, error) {
	const op = "service.booking.Checkout"

	if err := validate(req); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	promoCode, err := s.resolvePromotion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	groupID := uuid.New().String()
	bookedAt := s.now()

	var (
		mu       sync.Mutex
		outbound []*domain.Ticket
		ret      []*domain.Ticket
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, leg := range req.Legs {
		for _, seat := range leg.Seats {
			leg, seat := leg, seat
			g.Go(func() error {
				t, err := s.CreateBooking(gctx, req, leg, seat, groupID, promoCode, bookedAt)
				if err != nil {
					return err
				}
				mu.Lock()
				if leg.Return {
					ret = append(ret, t)
				} else {
					outbound = append(outbound, t)
				}
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		created := append(append([]*domain.Ticket{}, outbound...), ret...)
		if s.cfg.RollbackOnFailure {
			s.compensate(ctx, created)
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		pf := &PartialFailureError{Cause: err}
		for _, t := range created {
			pf.Succeeded = append(pf.Succeeded, t.ID)
		}
		return nil, fmt.Errorf("%s:%w", op, pf)
	}

	s.linkLegs(ctx, outbound, ret)

	var total int64
	for _, t := range append(append([]*domain.Ticket{}, outbound...), ret...) {
		total += t.Price
	}

	session := &domain.BookingSession{
		ID:                uuid.New(),
		UserID:            req.UserID,
		TripType:          req.TripType,
		BookingGroupID:    groupID,
		OutboundTicketIDs: ticketIDs(outbound),
		ReturnTicketIDs:   ticketIDs(ret),
		Amount:            total,
		State:             domain.SessionSeatsReserved,
		TransactionID:     uuid.New().String(),
		CreatedAt:         bookedAt,
		ExpiresAt:         bookedAt.Add(s.cfg.PaymentWindow),
	}

	payment := &domain.Payment{
		BookingGroupID: groupID,
		Amount:         total,
		PaymentStatus:  domain.PaymentPending,
		TransactionID:  session.TransactionID,
		PaymentDate:    bookedAt,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.sessions.SaveBooking(ctx, session, s.cfg.PaymentWindow); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if promoCode != nil {
		_ = s.promotions.IncrementUsage(ctx, *promoCode)
	}

	return session, nil
}

// compensate reverses the completed sub-operations of a failed fan-out:
// each created ticket is cancelled and its seat released, best effort.
func (s *Service) compensate(ctx context.Context, created []*domain.Ticket) {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range created {
		t := t
		g.Go(func() error {
			_ = s.tickets.UpdateStatus(gctx, t.ID, domain.TicketBooked, domain.TicketCancelled)
			_ = s.seats.Transition(gctx, t.TripSeatID, domain.SeatBooked, domain.SeatAvailable)
			return nil
		})
	}
	_ = g.Wait()
}

// linkLegs pairs the round-trip legs seat-by-seat so each ticket references
// its counterpart.
func (s *Service) linkLegs(ctx context.Context, outbound, ret []*domain.Ticket) {
	if len(outbound) != len(ret) {
		return
	}

	for i := range outbound {
		o, r := outbound[i], ret[i]
		_ = s.tickets.Link(ctx, o.ID, r.ID)
		_ = s.tickets.Link(ctx, r.ID, o.ID)
		o.LinkedTicketID = &r.ID
		r.LinkedTicketID = &o.ID
	}
}

func (s *Service) resolvePromotion(ctx context.Context, req *CheckoutRequest) (*string, error) {
	if req.PromotionCode == "" {
		return nil, nil
	}

	promo, err := s.promotions.GetByCode(ctx, req.PromotionCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromotionInvalid
		}
		return nil, err
	}

	if !promo.Active(s.now()) {
		return nil, ErrPromotionInvalid
	}
	if req.TripType == domain.TripRoundTrip && !promo.ApplicableToRoundTrip {
		return nil, ErrPromotionInvalid
	}

	return &promo.Code, nil
}

func validate(req *CheckoutRequest) error {
	if len(req.Legs) == 0 {
		return ErrNoSeatsSelected
	}

	var outLegs, retLegs int
	for _, leg := range req.Legs {
		if len(leg.Seats) == 0 {
			return ErrNoSeatsSelected
		}
		if leg.Return {
			retLegs++
		} else {
			outLegs++
		}
	}

	switch req.TripType {
	case domain.TripRoundTrip:
		if outLegs != 1 || retLegs != 1 {
			return ErrBadLegs
		}
	default:
		if outLegs != 1 || retLegs != 0 {
			return ErrBadLegs
		}
	}

	return nil
}

func ticketIDs(tickets []*domain.Ticket) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	return ids
}
