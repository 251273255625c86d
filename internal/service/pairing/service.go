package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/pricing"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

// TripGetter resolves a selected trip ID to its catalog record.
type TripGetter interface {
	Get(ctx context.Context, id int64) (*domain.Trip, error)
}

// Searcher is the search engine slice the controller drives for the return
// leg.
type Searcher interface {
	Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error)
}

// SessionStore persists pairing sessions across requests.
type SessionStore interface {
	SavePairing(ctx context.Context, id string, v any, ttl time.Duration) error
	GetPairing(ctx context.Context, id string, out any) (bool, error)
	DeletePairing(ctx context.Context, id string) error
}

type Config struct {
	SessionTTL time.Duration
}

type Service struct {
	trips    TripGetter
	searcher Searcher
	sessions SessionStore
	policy   pricing.Policy
	cfg      Config
}

func New(
	trips TripGetter,
	searcher Searcher,
	sessions SessionStore,
	policy pricing.Policy,
	cfg Config,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	return &Service{
		trips:    trips,
		searcher: searcher,
		sessions: sessions,
		policy:   policy,
		cfg:      cfg,
	}
}

// Start opens a pairing session for a search. Both slots begin empty.
func (s *Service) Start(
	ctx context.Context,
	userID int64,
	tripType domain.TripType,
	from, to string,
	departDate, returnDate time.Time,
) (*Session, error) {
	const op = "service.pairing.Start"

	session := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		TripType:   tripType,
		From:       from,
		To:         to,
		DepartDate: departDate,
		ReturnDate: returnDate,
	}

	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, nil
}

// SelectOutbound fills the outbound slot. For a round trip it also runs the
// return-leg search and returns the revealed list; for one-way the flow is
// ready to hand off and the returned list is nil.
func (s *Service) SelectOutbound(
	ctx context.Context,
	sessionID string,
	tripID int64,
) (*Session, []domain.Trip, error) {
	const op = "service.pairing.SelectOutbound"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s:%w", op, ErrTripNotFound)
		}
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	session.SelectOutbound(trip.ID, trip.Route.BasePrice)

	var returnTrips []domain.Trip
	if session.TripType == domain.TripRoundTrip {
		returnTrips, err = s.searcher.Search(ctx, session.To, session.From, session.ReturnDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	if err := s.save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, returnTrips, nil
}

// SelectReturn fills the return slot.
func (s *Service) SelectReturn(ctx context.Context, sessionID string, tripID int64) (*Session, error) {
	const op = "service.pairing.SelectReturn"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTripNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := session.SelectReturn(trip.ID, trip.Route.BasePrice); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, nil
}

// ResetOutbound empties both slots and discards return results.
func (s *Service) ResetOutbound(ctx context.Context, sessionID string) (*Session, error) {
	const op = "service.pairing.ResetOutbound"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	session.ResetOutbound()

	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, nil
}

// Get loads a pairing session.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	const op = "service.pairing.Get"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return session, nil
}

// Preview prices the selected pair for display.
func (s *Service) Preview(ctx context.Context, sessionID string) (pricing.Preview, error) {
	const op = "service.pairing.Preview"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return pricing.Preview{}, fmt.Errorf("%s:%w", op, err)
	}

	preview, err := session.Preview(s.policy)
	if err != nil {
		return pricing.Preview{}, fmt.Errorf("%s:%w", op, err)
	}

	return preview, nil
}

// Handoff is the pair of selected trip IDs passed to seat selection.
type Handoff struct {
	TripType       domain.TripType
	OutboundTripID int64
	ReturnTripID   int64 // zero for one-way
}

// Continue closes the pairing stage. It is enabled only when every slot the
// trip type requires is selected.
func (s *Service) Continue(ctx context.Context, sessionID string) (*Handoff, error) {
	const op = "service.pairing.Continue"

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if session.Outbound == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrOutboundEmpty)
	}
	if session.TripType == domain.TripRoundTrip && session.Return == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrReturnEmpty)
	}

	h := &Handoff{
		TripType:       session.TripType,
		OutboundTripID: session.Outbound.TripID,
	}
	if session.Return != nil {
		h.ReturnTripID = session.Return.TripID
	}

	_ = s.sessions.DeletePairing(ctx, sessionID)

	return h, nil
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	var session Session
	ok, err := s.sessions.GetPairing(ctx, id, &session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *Service) save(ctx context.Context, session *Session) error {
	return s.sessions.SavePairing(ctx, session.ID.String(), session, s.cfg.SessionTTL)
}
