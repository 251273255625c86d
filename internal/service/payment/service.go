package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/provider"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

// SessionStore persists booking sessions across the provider redirect hop.
type SessionStore interface {
	GetBooking(ctx context.Context, id string) (*domain.BookingSession, bool, error)
	GetBookingByTransaction(ctx context.Context, transactionID string) (*domain.BookingSession, bool, error)
	SaveBooking(ctx context.Context, session *domain.BookingSession, ttl time.Duration) error
	DeleteBooking(ctx context.Context, session *domain.BookingSession) error
}

type PaymentStore interface {
	UpdateStatusByTransaction(ctx context.Context, transactionID string, status domain.PaymentStatus) error
}

type TicketConfirmer interface {
	Confirm(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	sessions  SessionStore
	payments  PaymentStore
	tickets   TicketConfirmer
	providers *provider.Registry
	logger    *slog.Logger
	now       func() time.Time
}

func New(
	sessions SessionStore,
	payments PaymentStore,
	tickets TicketConfirmer,
	providers *provider.Registry,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		payments:  payments,
		tickets:   tickets,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

// Get loads a live session. A session whose countdown has elapsed, or whose
// TTL record is already gone, reports ErrSessionExpired so the caller can
// route the user back to search.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.BookingSession, error) {
	const op = "service.payment.Get"

	session, ok, err := s.sessions.GetBooking(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrSessionExpired)
	}

	if !session.State.Terminal() && session.Expired(s.now()) {
		_ = s.sessions.DeleteBooking(ctx, session)
		return nil, fmt.Errorf("%s:%w", op, ErrSessionExpired)
	}

	return session, nil
}

// Intent is what the storefront needs to hand the user to the gateway: the
// redirect URL and a QR payload rendered purely for display.
type Intent struct {
	Session     *domain.BookingSession
	RedirectURL string
	QRPayload   string
}

// SelectMethod picks a provider for the session and moves it to
// awaiting_provider. Re-selecting while still awaiting is allowed, so the
// user can switch gateways before redirecting.
func (s *Service) SelectMethod(ctx context.Context, sessionID, method string) (*Intent, error) {
	const op = "service.payment.SelectMethod"

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch session.State {
	case domain.SessionSeatsReserved, domain.SessionMethodSelected, domain.SessionAwaitingProvider:
	default:
		return nil, fmt.Errorf("%s:%w", op, ErrBadState)
	}

	p, err := s.providers.Get(method)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	session.Method = method
	session.State = domain.SessionAwaitingProvider

	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Intent{
		Session:     session,
		RedirectURL: p.PaymentURL(session),
		QRPayload:   p.QRPayload(session),
	}, nil
}

// Outcome is a reconciled provider callback.
type Outcome struct {
	Session   *domain.BookingSession
	Confirmed bool
	Message   string
	// Warning carries the non-fatal reconciliation problems, e.g. a payment
	// record that could not be located by its transaction ID.
	Warning string
}

// Callback reconciles a provider redirect into ticket and payment status
// transitions. On success the order is fixed: the payment record first
// (non-fatal if missing), then every session ticket confirmed in parallel
// (fatal if any confirmation fails). On failure the session is marked
// failed and its tickets stay booked for a later retry.
func (s *Service) Callback(ctx context.Context, query url.Values) (*Outcome, error) {
	const op = "service.payment.Callback"

	p, err := s.providers.Resolve(query)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	result, err := p.ParseCallback(query)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	session, ok, err := s.sessions.GetBookingByTransaction(ctx, result.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrSessionNotFound)
	}

	// The countdown and the callback race; whichever finalized the session
	// first wins and the loser is rejected here.
	if session.State.Terminal() {
		return nil, fmt.Errorf("%s:%w", op, ErrSessionFinalized)
	}

	if !result.Success {
		return s.fail(ctx, op, session, result)
	}

	return s.reconcile(ctx, op, session, result)
}

func (s *Service) reconcile(
	ctx context.Context,
	op string,
	session *domain.BookingSession,
	result *provider.CallbackResult,
) (*Outcome, error) {
	outcome := &Outcome{Session: session, Confirmed: true, Message: result.Message}

	// (a) payment record: never blocks ticket confirmation.
	if err := s.payments.UpdateStatusByTransaction(ctx, result.TransactionID, domain.PaymentCompleted); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			outcome.Warning = "payment record not found for transaction " + result.TransactionID
		} else {
			outcome.Warning = "payment record update failed"
		}
		s.logger.Warn("payment reconciliation",
			"transaction_id", result.TransactionID, "error", err)
	}

	// (b)+(c) every ticket of every leg, confirmed in parallel and awaited
	// together. Any failure is fatal to the whole reconciliation.
	ids := session.TicketIDs()
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return s.tickets.Confirm(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s:%w: %w", op, ErrConfirmFailed, err)
	}

	session.State = domain.SessionReconciled
	if err := s.sessions.DeleteBooking(ctx, session); err != nil {
		s.logger.Warn("session cleanup failed", "session_id", session.ID, "error", err)
	}

	return outcome, nil
}

func (s *Service) fail(
	ctx context.Context,
	op string,
	session *domain.BookingSession,
	result *provider.CallbackResult,
) (*Outcome, error) {
	if err := s.payments.UpdateStatusByTransaction(ctx, result.TransactionID, domain.PaymentFailed); err != nil {
		s.logger.Warn("payment reconciliation",
			"transaction_id", result.TransactionID, "error", err)
	}

	// Tickets stay booked; the user may retry payment from the tracking
	// view.
	session.State = domain.SessionFailed
	session.FailureReason = result.Message
	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Outcome{Session: session, Confirmed: false, Message: result.Message}, nil
}

// Cancel discards the session without contacting the provider. Created
// tickets remain booked until they expire or the user cancels them from the
// tracking view.
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	const op = "service.payment.Cancel"

	session, ok, err := s.sessions.GetBooking(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s:%w", op, ErrSessionNotFound)
	}

	if err := s.sessions.DeleteBooking(ctx, session); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Resume re-enters the controller at seats_reserved with a rebuilt session,
// used by the tracking view's retry-payment action.
func (s *Service) Resume(ctx context.Context, session *domain.BookingSession, window time.Duration) error {
	const op = "service.payment.Resume"

	session.State = domain.SessionSeatsReserved
	session.ExpiresAt = s.now().Add(window)

	if err := s.sessions.SaveBooking(ctx, session, window); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) save(ctx context.Context, session *domain.BookingSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.sessions.SaveBooking(ctx, session, ttl)
}
