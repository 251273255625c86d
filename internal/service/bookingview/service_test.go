package bookingview

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/pricing"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type fakeTickets struct {
	mu      sync.Mutex
	tickets []domain.Ticket
}

func (f *fakeTickets) ListByUser(_ context.Context, userID int64) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTickets) ListByGroup(_ context.Context, groupID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.BookingGroupID != nil && *t.BookingGroupID == groupID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTickets) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			if f.tickets[i].Status != from {
				return repository.ErrBadTransition
			}
			f.tickets[i].Status = to
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeTrips struct {
	trips map[int64]*domain.Trip
}

func (f *fakeTrips) Get(_ context.Context, id int64) (*domain.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

type fakePromos struct {
	promos map[string]*domain.Promotion
}

func (f *fakePromos) GetByCode(_ context.Context, code string) (*domain.Promotion, error) {
	p, ok := f.promos[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type fakeResumer struct {
	session *domain.BookingSession
	window  time.Duration
}

func (f *fakeResumer) Resume(_ context.Context, s *domain.BookingSession, window time.Duration) error {
	s.ExpiresAt = time.Now().Add(window)
	f.session = s
	f.window = window
	return nil
}

type env struct {
	tickets *fakeTickets
	trips   *fakeTrips
	promos  *fakePromos
	resumer *fakeResumer
	svc     *Service
}

func newEnv() *env {
	e := &env{
		tickets: &fakeTickets{},
		trips: &fakeTrips{trips: map[int64]*domain.Trip{
			5: {ID: 5, Route: domain.Route{FromLocation: "Hà Nội", ToLocation: "Sapa", BasePrice: 200_000}},
			7: {ID: 7, Route: domain.Route{FromLocation: "Sapa", ToLocation: "Hà Nội", BasePrice: 500_000}},
		}},
		promos:  &fakePromos{promos: map[string]*domain.Promotion{}},
		resumer: &fakeResumer{},
	}
	e.svc = New(e.tickets, e.trips, e.promos, e.resumer, pricing.Default(), Config{
		GroupWindow:   60 * time.Second,
		PaymentWindow: 20 * time.Minute,
	})
	return e
}

func ticket(tripID int64, price int64, bookedAt time.Time, opts ...func(*domain.Ticket)) domain.Ticket {
	t := domain.Ticket{
		ID:            uuid.New(),
		UserID:        1,
		TripID:        tripID,
		SeatNumber:    "A1",
		Price:         price,
		Status:        domain.TicketBooked,
		BookingMethod: domain.BookingOnline,
		TripType:      domain.TripOneWay,
		BookedAt:      bookedAt,
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

func withGroup(groupID string) func(*domain.Ticket) {
	return func(t *domain.Ticket) { t.BookingGroupID = &groupID }
}

func withStatus(s domain.TicketStatus) func(*domain.Ticket) {
	return func(t *domain.Ticket) { t.Status = s }
}

func withReturn() func(*domain.Ticket) {
	return func(t *domain.Ticket) {
		t.TripType = domain.TripRoundTrip
		t.IsReturnTrip = true
	}
}

func TestGroupTicketsWindow(t *testing.T) {
	// Scenario D: T and T+30s merge, T+90s forms its own booking.
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		ticket(5, 200_000, base),
		ticket(5, 200_000, base.Add(30*time.Second)),
		ticket(5, 200_000, base.Add(90*time.Second)),
	}

	groups := GroupTickets(tickets, 60*time.Second)
	require.Len(t, groups, 2)
	// Newest first.
	assert.Len(t, groups[0].Tickets, 1)
	assert.Len(t, groups[1].Tickets, 2)
}

func TestGroupTicketsFoldAgainstFirst(t *testing.T) {
	// The fold compares against each group's FIRST ticket, so a chain of
	// 40s-apart tickets does not merge transitively past the window.
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		ticket(5, 200_000, base),
		ticket(5, 200_000, base.Add(40*time.Second)),
		ticket(5, 200_000, base.Add(80*time.Second)),
	}

	groups := GroupTickets(tickets, 60*time.Second)
	require.Len(t, groups, 2)
	assert.Len(t, groups[1].Tickets, 2)
	assert.Len(t, groups[0].Tickets, 1)
}

func TestGroupTicketsOrderIndependent(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	a := ticket(5, 200_000, base)
	b := ticket(5, 200_000, base.Add(10*time.Second))
	c := ticket(5, 200_000, base.Add(5*time.Minute))

	forward := GroupTickets([]domain.Ticket{a, b, c}, 60*time.Second)
	reversed := GroupTickets([]domain.Ticket{c, b, a}, 60*time.Second)

	require.Len(t, forward, 2)
	require.Len(t, reversed, 2)
	for i := range forward {
		assert.Equal(t, len(forward[i].Tickets), len(reversed[i].Tickets))
		assert.Equal(t, forward[i].Total, reversed[i].Total)
	}
}

func TestGroupTicketsByGroupID(t *testing.T) {
	// Tickets carrying a group ID group exactly, even across trips and
	// outside the time window.
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		ticket(5, 200_000, base, withGroup("g1")),
		ticket(7, 200_000, base.Add(3*time.Minute), withGroup("g1"), withReturn()),
		ticket(5, 200_000, base.Add(time.Second)),
	}

	groups := GroupTickets(tickets, 60*time.Second)
	require.Len(t, groups, 2)

	var grouped *Booking
	for i := range groups {
		if groups[i].GroupID == "g1" {
			grouped = &groups[i]
		}
	}
	require.NotNil(t, grouped)
	assert.Len(t, grouped.Tickets, 2)
	assert.True(t, grouped.RoundTrip)
}

func TestRoundTripSignals(t *testing.T) {
	base := time.Now()

	t.Run("group id alone", func(t *testing.T) {
		groups := GroupTickets([]domain.Ticket{ticket(5, 1, base, withGroup("g"))}, time.Minute)
		assert.True(t, groups[0].RoundTrip)
	})

	t.Run("trip type alone", func(t *testing.T) {
		tk := ticket(5, 1, base)
		tk.TripType = domain.TripRoundTrip
		groups := GroupTickets([]domain.Ticket{tk}, time.Minute)
		assert.True(t, groups[0].RoundTrip)
	})

	t.Run("return flag alone", func(t *testing.T) {
		tk := ticket(5, 1, base)
		tk.IsReturnTrip = true
		groups := GroupTickets([]domain.Ticket{tk}, time.Minute)
		assert.True(t, groups[0].RoundTrip)
	})

	t.Run("no signal", func(t *testing.T) {
		groups := GroupTickets([]domain.Ticket{ticket(5, 1, base)}, time.Minute)
		assert.False(t, groups[0].RoundTrip)
	})
}

func TestGroupAggregateStatus(t *testing.T) {
	base := time.Now()
	groups := GroupTickets([]domain.Ticket{
		ticket(5, 1, base, withStatus(domain.TicketConfirmed)),
		ticket(5, 1, base, withStatus(domain.TicketBooked)),
	}, time.Minute)
	require.Len(t, groups, 1)
	assert.Equal(t, domain.TicketBooked, groups[0].Status)
}

func TestInvoiceOneWay(t *testing.T) {
	// Scenario B: two 200,000đ seats on a one-way trip, no round-trip
	// discount; the 2% online discount still applies.
	e := newEnv()
	base := time.Now()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 200_000, base, withGroup("g1"), withStatus(domain.TicketConfirmed)),
		ticket(5, 200_000, base, withGroup("g1"), withStatus(domain.TicketConfirmed)),
	}

	inv, err := e.svc.Invoice(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), inv.Subtotal)
	assert.Zero(t, inv.RoundTripDiscount)
	assert.Equal(t, int64(8_000), inv.OnlineDiscount)
	assert.Equal(t, int64(392_000), inv.Total)
	assert.Len(t, inv.Outbound, 2)
	assert.Empty(t, inv.Return)
	require.NotNil(t, inv.OutboundTrip)
	assert.Equal(t, "Hà Nội", inv.OutboundTrip.Route.FromLocation)
}

func TestInvoiceRoundTrip(t *testing.T) {
	// Scenario A: 500,000đ outbound + 500,000đ return, 10% discount on the
	// 1,000,000đ subtotal.
	e := newEnv()
	base := time.Now()
	out := ticket(5, 500_000, base, withGroup("g2"), withStatus(domain.TicketConfirmed))
	out.TripType = domain.TripRoundTrip
	ret := ticket(7, 500_000, base, withGroup("g2"), withStatus(domain.TicketConfirmed), withReturn())
	e.tickets.tickets = []domain.Ticket{out, ret}

	inv, err := e.svc.Invoice(context.Background(), "g2")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), inv.Subtotal)
	assert.Equal(t, int64(100_000), inv.RoundTripDiscount)
	assert.Equal(t, int64(20_000), inv.OnlineDiscount)
	assert.Equal(t, int64(880_000), inv.Total)
	require.NotNil(t, inv.ReturnTrip)
	assert.Equal(t, int64(7), inv.ReturnTrip.ID)
}

func TestInvoicePromotionAdditive(t *testing.T) {
	e := newEnv()
	e.promos.promos["SUMMER"] = &domain.Promotion{
		Code:          "SUMMER",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 20,
		MaxDiscount:   50_000,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
	}
	code := "SUMMER"
	base := time.Now()
	tk := ticket(5, 400_000, base, withGroup("g3"), withStatus(domain.TicketConfirmed))
	tk.PromotionCode = &code
	e.tickets.tickets = []domain.Ticket{tk}

	inv, err := e.svc.Invoice(context.Background(), "g3")
	require.NoError(t, err)
	// 20% of 400,000 is 80,000, capped at 50,000; plus 2% online.
	assert.Equal(t, int64(50_000), inv.PromotionDiscount)
	assert.Equal(t, int64(8_000), inv.OnlineDiscount)
	assert.Equal(t, int64(342_000), inv.Total)
}

func TestInvoiceTotalClamped(t *testing.T) {
	e := newEnv()
	e.promos.promos["FREE"] = &domain.Promotion{
		Code:          "FREE",
		DiscountType:  domain.DiscountAmount,
		DiscountValue: 10_000_000,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
	}
	code := "FREE"
	tk := ticket(5, 100_000, time.Now(), withGroup("g4"), withStatus(domain.TicketConfirmed))
	tk.PromotionCode = &code
	e.tickets.tickets = []domain.Ticket{tk}

	inv, err := e.svc.Invoice(context.Background(), "g4")
	require.NoError(t, err)
	assert.Equal(t, int64(0), inv.Total)
}

func TestInvoiceRequiresConfirmed(t *testing.T) {
	e := newEnv()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 200_000, time.Now(), withGroup("g5")),
	}

	_, err := e.svc.Invoice(context.Background(), "g5")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	// The plain detail view still works.
	detail, err := e.svc.Get(context.Background(), "g5")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketBooked, detail.Booking.Status)
	require.NotNil(t, detail.Trip)
}

func TestInvoiceUnknownGroup(t *testing.T) {
	e := newEnv()
	_, err := e.svc.Invoice(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRetryPayment(t *testing.T) {
	e := newEnv()
	base := time.Now()
	out := ticket(5, 500_000, base, withGroup("g6"))
	out.TripType = domain.TripRoundTrip
	ret := ticket(7, 500_000, base, withGroup("g6"), withReturn())
	cancelled := ticket(5, 500_000, base, withGroup("g6"), withStatus(domain.TicketCancelled))
	e.tickets.tickets = []domain.Ticket{out, ret, cancelled}

	session, err := e.svc.RetryPayment(context.Background(), "g6")
	require.NoError(t, err)

	// The session covers every booked ticket, not just one, and skips the
	// cancelled one.
	assert.Equal(t, int64(1_000_000), session.Amount)
	assert.Len(t, session.OutboundTicketIDs, 1)
	assert.Len(t, session.ReturnTicketIDs, 1)
	assert.Equal(t, domain.TripRoundTrip, session.TripType)
	assert.Equal(t, domain.SessionSeatsReserved, session.State)
	assert.NotEmpty(t, session.TransactionID)

	require.NotNil(t, e.resumer.session)
	assert.Equal(t, 20*time.Minute, e.resumer.window)
}

func TestRetryPaymentNothingBooked(t *testing.T) {
	e := newEnv()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 1, time.Now(), withGroup("g7"), withStatus(domain.TicketConfirmed)),
	}

	_, err := e.svc.RetryPayment(context.Background(), "g7")
	assert.ErrorIs(t, err, ErrNotRetryable)
}

func TestCancelGroup(t *testing.T) {
	e := newEnv()
	base := time.Now()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 1, base, withGroup("g8")),
		ticket(5, 1, base, withGroup("g8")),
		ticket(5, 1, base, withGroup("g8"), withStatus(domain.TicketConfirmed)),
	}

	require.NoError(t, e.svc.Cancel(context.Background(), "g8"))

	var cancelled, confirmed int
	for _, tk := range e.tickets.tickets {
		switch tk.Status {
		case domain.TicketCancelled:
			cancelled++
		case domain.TicketConfirmed:
			confirmed++
		}
	}
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, 1, confirmed)

	// A second cancel has nothing left to do.
	err := e.svc.Cancel(context.Background(), "g8")
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestBookingsView(t *testing.T) {
	e := newEnv()
	base := time.Now()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 200_000, base.Add(-time.Hour), withGroup("old")),
		ticket(5, 200_000, base, withGroup("new")),
	}

	groups, err := e.svc.Bookings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "new", groups[0].GroupID)
	assert.Equal(t, "old", groups[1].GroupID)
}

func TestInvoicePDF(t *testing.T) {
	e := newEnv()
	e.tickets.tickets = []domain.Ticket{
		ticket(5, 200_000, time.Now(), withGroup("g9"), withStatus(domain.TicketConfirmed)),
	}

	data, filename, err := e.svc.InvoicePDF(context.Background(), "g9")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "INVOICE_g9.pdf", filename)
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 VND", formatVND(0))
	assert.Equal(t, "400.000 VND", formatVND(400_000))
	assert.Equal(t, "1.000.000 VND", formatVND(1_000_000))
	assert.Equal(t, "-5.000 VND", formatVND(-5_000))
}
