package bookingview

import (
	"sort"
	"time"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

// Booking is one display-level booking re-derived from the flat ticket list.
type Booking struct {
	// GroupID is the shared booking-group identifier when the tickets carry
	// one, otherwise a synthetic key from the first ticket's ID.
	GroupID   string
	TripID    int64
	Tickets   []domain.Ticket
	RoundTrip bool
	Status    domain.TicketStatus
	Total     int64
	BookedAt  time.Time
}

// GroupTickets folds a flat ticket list into bookings. Tickets that carry a
// booking-group ID group exactly by it; the rest fall back to the legacy
// heuristic: same trip and booked within `window` of the group's FIRST
// ticket (a left-fold, so two genuinely distinct purchases on the same trip
// inside one window still merge — an accepted approximation).
//
// The result is ordered by each booking's earliest BookedAt, newest first.
func GroupTickets(tickets []domain.Ticket, window time.Duration) []Booking {
	var groups []*Booking
	byGroupID := make(map[string]*Booking)
	var folds []*Booking // groups formed by the heuristic, in fold order

	for _, t := range tickets {
		if t.BookingGroupID != nil && *t.BookingGroupID != "" {
			id := *t.BookingGroupID
			g, ok := byGroupID[id]
			if !ok {
				g = &Booking{GroupID: id, TripID: t.TripID, BookedAt: t.BookedAt}
				byGroupID[id] = g
				groups = append(groups, g)
			}
			g.Tickets = append(g.Tickets, t)
			continue
		}

		var match *Booking
		for _, g := range folds {
			first := g.Tickets[0]
			if first.TripID == t.TripID && absDelta(first.BookedAt, t.BookedAt) < window {
				match = g
				break
			}
		}
		if match == nil {
			match = &Booking{GroupID: t.ID.String(), TripID: t.TripID, BookedAt: t.BookedAt}
			folds = append(folds, match)
			groups = append(groups, match)
		}
		match.Tickets = append(match.Tickets, t)
	}

	out := make([]Booking, 0, len(groups))
	for _, g := range groups {
		finalize(g)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookedAt.After(out[j].BookedAt)
	})
	return out
}

// finalize derives the per-booking aggregates: round-trip detection (any one
// of three signals is sufficient), aggregate status, total, earliest
// timestamp.
func finalize(g *Booking) {
	allConfirmed, allCancelled := true, true
	for i, t := range g.Tickets {
		if t.BookingGroupID != nil && *t.BookingGroupID != "" ||
			t.TripType == domain.TripRoundTrip || t.IsReturnTrip {
			g.RoundTrip = true
		}
		if t.Status != domain.TicketConfirmed {
			allConfirmed = false
		}
		if t.Status != domain.TicketCancelled {
			allCancelled = false
		}
		g.Total += t.Price
		if i == 0 || t.BookedAt.Before(g.BookedAt) {
			g.BookedAt = t.BookedAt
		}
	}

	switch {
	case allConfirmed:
		g.Status = domain.TicketConfirmed
	case allCancelled:
		g.Status = domain.TicketCancelled
	default:
		g.Status = domain.TicketBooked
	}
}

func absDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
