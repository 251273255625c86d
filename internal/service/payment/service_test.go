package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/provider"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type memSessions struct {
	mu    sync.Mutex
	byID  map[string]*domain.BookingSession
	byTxn map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]*domain.BookingSession{}, byTxn: map[string]string{}}
}

func (m *memSessions) SaveBooking(_ context.Context, s *domain.BookingSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byID[s.ID.String()] = &cp
	if s.TransactionID != "" {
		m.byTxn[s.TransactionID] = s.ID.String()
	}
	return nil
}

func (m *memSessions) GetBooking(_ context.Context, id string) (*domain.BookingSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, false, nil
	}
	cp := *s
	return &cp, true, nil
}

func (m *memSessions) GetBookingByTransaction(ctx context.Context, txn string) (*domain.BookingSession, bool, error) {
	m.mu.Lock()
	id, ok := m.byTxn[txn]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	return m.GetBooking(ctx, id)
}

func (m *memSessions) DeleteBooking(_ context.Context, s *domain.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, s.ID.String())
	delete(m.byTxn, s.TransactionID)
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	statuses map[string]domain.PaymentStatus
	missing  bool
}

func (f *fakePayments) UpdateStatusByTransaction(_ context.Context, txn string, status domain.PaymentStatus) error {
	if f.missing {
		return repository.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[string]domain.PaymentStatus{}
	}
	f.statuses[txn] = status
	return nil
}

type fakeConfirmer struct {
	mu        sync.Mutex
	confirmed map[uuid.UUID]int
	failFor   map[uuid.UUID]bool
}

func newFakeConfirmer() *fakeConfirmer {
	return &fakeConfirmer{confirmed: map[uuid.UUID]int{}, failFor: map[uuid.UUID]bool{}}
}

func (f *fakeConfirmer) Confirm(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[id] {
		return errors.New("confirm failed")
	}
	f.confirmed[id]++
	return nil
}

type env struct {
	sessions *memSessions
	payments *fakePayments
	tickets  *fakeConfirmer
	svc      *Service
}

func newEnv() *env {
	e := &env{
		sessions: newMemSessions(),
		payments: &fakePayments{},
		tickets:  newFakeConfirmer(),
	}
	reg := provider.NewRegistry(
		provider.NewVNPay("", "VEBUS01", "https://example.com/payment/callback"),
		provider.NewMoMo("", "MOMOVEBUS", "https://example.com/payment/callback"),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e.svc = New(e.sessions, e.payments, e.tickets, reg, logger)
	return e
}

func (e *env) seed(t *testing.T, tripType domain.TripType, nOut, nRet int) *domain.BookingSession {
	t.Helper()

	session := &domain.BookingSession{
		ID:             uuid.New(),
		UserID:         9,
		TripType:       tripType,
		BookingGroupID: uuid.New().String(),
		Amount:         400_000,
		State:          domain.SessionSeatsReserved,
		TransactionID:  uuid.New().String(),
		CreatedAt:      time.Now(),
		ExpiresAt:      time.Now().Add(1200 * time.Second),
	}
	for i := 0; i < nOut; i++ {
		session.OutboundTicketIDs = append(session.OutboundTicketIDs, uuid.New())
	}
	for i := 0; i < nRet; i++ {
		session.ReturnTicketIDs = append(session.ReturnTicketIDs, uuid.New())
	}
	require.NoError(t, e.sessions.SaveBooking(context.Background(), session, time.Minute))
	return session
}

func vnpayCallback(txn, code string) url.Values {
	return url.Values{
		"vnp_TxnRef":       {txn},
		"vnp_ResponseCode": {code},
	}
}

func TestSelectMethod(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 2, 0)
	ctx := context.Background()

	intent, err := e.svc.SelectMethod(ctx, session.ID.String(), "vnpay")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAwaitingProvider, intent.Session.State)
	assert.Contains(t, intent.RedirectURL, "vnp_TxnRef="+session.TransactionID)
	assert.NotEmpty(t, intent.QRPayload)

	t.Run("switching gateways while awaiting is allowed", func(t *testing.T) {
		intent, err := e.svc.SelectMethod(ctx, session.ID.String(), "momo")
		require.NoError(t, err)
		assert.Equal(t, "momo", intent.Session.Method)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := e.svc.SelectMethod(ctx, session.ID.String(), "zalopay")
		assert.ErrorIs(t, err, provider.ErrUnknownProvider)
	})
}

func TestGetExpiry(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 1, 0)
	ctx := context.Background()

	t.Run("live session is returned", func(t *testing.T) {
		got, err := e.svc.Get(ctx, session.ID.String())
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
	})

	t.Run("countdown expiry aborts the session", func(t *testing.T) {
		e.svc.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }

		_, err := e.svc.Get(ctx, session.ID.String())
		assert.ErrorIs(t, err, ErrSessionExpired)

		// The record is gone afterwards.
		_, ok, _ := e.sessions.GetBooking(ctx, session.ID.String())
		assert.False(t, ok)
	})

	t.Run("missing record reads as expired", func(t *testing.T) {
		_, err := e.svc.Get(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestCallbackSuccessReconciles(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripRoundTrip, 2, 2)
	ctx := context.Background()

	outcome, err := e.svc.Callback(ctx, vnpayCallback(session.TransactionID, "00"))
	require.NoError(t, err)
	assert.True(t, outcome.Confirmed)
	assert.Empty(t, outcome.Warning)

	// Payment completed, and the union of both legs confirmed.
	assert.Equal(t, domain.PaymentCompleted, e.payments.statuses[session.TransactionID])
	assert.Len(t, e.tickets.confirmed, 4)

	// Session cleared on successful reconciliation.
	_, ok, _ := e.sessions.GetBooking(ctx, session.ID.String())
	assert.False(t, ok)
}

func TestCallbackMissingPaymentIsNonFatal(t *testing.T) {
	e := newEnv()
	e.payments.missing = true
	session := e.seed(t, domain.TripOneWay, 2, 0)

	outcome, err := e.svc.Callback(context.Background(), vnpayCallback(session.TransactionID, "00"))
	require.NoError(t, err)
	assert.True(t, outcome.Confirmed)
	assert.NotEmpty(t, outcome.Warning)
	assert.Len(t, e.tickets.confirmed, 2)
}

func TestCallbackConfirmFailureIsFatal(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 2, 0)
	e.tickets.failFor[session.OutboundTicketIDs[1]] = true

	_, err := e.svc.Callback(context.Background(), vnpayCallback(session.TransactionID, "00"))
	assert.ErrorIs(t, err, ErrConfirmFailed)
}

func TestCallbackFailure(t *testing.T) {
	// Scenario C: response code 24 fails the session, tickets stay booked.
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 2, 0)
	ctx := context.Background()

	outcome, err := e.svc.Callback(ctx, vnpayCallback(session.TransactionID, "24"))
	require.NoError(t, err)
	assert.False(t, outcome.Confirmed)
	assert.Equal(t, "Giao dịch bị hủy bởi người dùng", outcome.Message)

	got, ok, _ := e.sessions.GetBooking(ctx, session.ID.String())
	require.True(t, ok)
	assert.Equal(t, domain.SessionFailed, got.State)
	assert.Equal(t, "Giao dịch bị hủy bởi người dùng", got.FailureReason)

	// No ticket was touched.
	assert.Empty(t, e.tickets.confirmed)
	assert.Equal(t, domain.PaymentFailed, e.payments.statuses[session.TransactionID])
}

func TestCallbackOnFinalizedSession(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 1, 0)
	ctx := context.Background()

	_, err := e.svc.Callback(ctx, vnpayCallback(session.TransactionID, "24"))
	require.NoError(t, err)

	// A second callback for the same transaction loses the race.
	_, err = e.svc.Callback(ctx, vnpayCallback(session.TransactionID, "00"))
	assert.ErrorIs(t, err, ErrSessionFinalized)
	assert.Empty(t, e.tickets.confirmed)
}

func TestCallbackUnknownTransaction(t *testing.T) {
	e := newEnv()

	_, err := e.svc.Callback(context.Background(), vnpayCallback("TXN-GONE", "00"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelKeepsTicketsBooked(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 2, 0)
	ctx := context.Background()

	require.NoError(t, e.svc.Cancel(ctx, session.ID.String()))

	_, ok, _ := e.sessions.GetBooking(ctx, session.ID.String())
	assert.False(t, ok)
	// Cancellation never contacts the provider or touches tickets.
	assert.Empty(t, e.tickets.confirmed)
}

func TestResume(t *testing.T) {
	e := newEnv()
	session := e.seed(t, domain.TripOneWay, 2, 0)
	session.State = domain.SessionFailed
	ctx := context.Background()

	require.NoError(t, e.svc.Resume(ctx, session, 20*time.Minute))

	got, err := e.svc.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionSeatsReserved, got.State)
	assert.True(t, got.ExpiresAt.After(time.Now()))
}
