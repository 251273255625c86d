package seats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

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

type fakeSeats struct {
	byTrip     map[int64][]domain.TripSeat
	provisions int
}

func (f *fakeSeats) ListByTrip(_ context.Context, tripID int64) ([]domain.TripSeat, error) {
	return f.byTrip[tripID], nil
}

func (f *fakeSeats) Provision(_ context.Context, seats []domain.TripSeat) error {
	f.provisions++
	for _, s := range seats {
		// Mirrors the ON CONFLICT DO NOTHING insert.
		exists := false
		for _, have := range f.byTrip[s.TripID] {
			if have.SeatNumber == s.SeatNumber {
				exists = true
				break
			}
		}
		if !exists {
			f.byTrip[s.TripID] = append(f.byTrip[s.TripID], s)
		}
	}
	return nil
}

func (f *fakeSeats) ForceStatus(_ context.Context, seatID int64, to domain.SeatStatus) error {
	for tripID, seats := range f.byTrip {
		for i := range seats {
			if seats[i].ID == seatID {
				f.byTrip[tripID][i].Status = to
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func newEnv() (*Service, *fakeTrips, *fakeSeats) {
	trips := &fakeTrips{trips: map[int64]*domain.Trip{
		1: {ID: 1, Vehicle: domain.Vehicle{ID: 10, Type: "sleeper", TotalSeats: 40}},
	}}
	seats := &fakeSeats{byTrip: map[int64][]domain.TripSeat{}}
	return New(trips, seats), trips, seats
}

func TestLayoutLazyProvision(t *testing.T) {
	// Scenario E: the first seat-map request for a trip with no seat rows
	// materializes the full map with every seat available.
	svc, _, store := newEnv()
	ctx := context.Background()

	layout, err := svc.Layout(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.provisions)
	assert.Equal(t, 3, layout.RowWidth)
	require.Len(t, layout.Floors, 2)

	total := 0
	for _, f := range layout.Floors {
		for _, row := range f.Rows {
			for _, s := range row {
				total++
				assert.Equal(t, domain.SeatAvailable, s.Status)
				assert.True(t, s.Selectable)
			}
		}
	}
	assert.Equal(t, 40, total)

	// The second request reads the stored rows without provisioning again.
	_, err = svc.Layout(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.provisions)
}

func TestLayoutUnknownTrip(t *testing.T) {
	svc, _, _ := newEnv()

	_, err := svc.Layout(context.Background(), 99, false)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestLayoutAdminView(t *testing.T) {
	svc, _, store := newEnv()
	store.byTrip[2] = []domain.TripSeat{
		{ID: 1, TripID: 2, SeatNumber: "A1", SeatType: domain.SeatStandard, Status: domain.SeatBooked},
		{ID: 2, TripID: 2, SeatNumber: "A2", SeatType: domain.SeatStandard, Status: domain.SeatAvailable},
	}

	layout, err := svc.Layout(context.Background(), 2, true)
	require.NoError(t, err)
	require.Len(t, layout.Floors, 1)
	for _, s := range layout.Floors[0].Rows[0] {
		assert.True(t, s.Selectable)
	}
}

func TestForce(t *testing.T) {
	svc, _, store := newEnv()
	store.byTrip[2] = []domain.TripSeat{
		{ID: 7, TripID: 2, SeatNumber: "A1", Status: domain.SeatBooked},
	}

	require.NoError(t, svc.Force(context.Background(), 7, domain.SeatAvailable))
	assert.Equal(t, domain.SeatAvailable, store.byTrip[2][0].Status)

	err := svc.Force(context.Background(), 99, domain.SeatAvailable)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
