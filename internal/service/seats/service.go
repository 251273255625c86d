// Package seats serves the per-trip seat map: the derived floor layout for
// the selection grid, provisioned lazily the first time a trip's map is
// requested.
package seats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
	"github.com/nlduyvu/vebus-go/internal/seatmap"
)

var ErrTripNotFound = errors.New("trip not found")

type TripGetter interface {
	Get(ctx context.Context, id int64) (*domain.Trip, error)
}

type SeatStore interface {
	ListByTrip(ctx context.Context, tripID int64) ([]domain.TripSeat, error)
	Provision(ctx context.Context, seats []domain.TripSeat) error
	ForceStatus(ctx context.Context, seatID int64, to domain.SeatStatus) error
}

type Service struct {
	trips TripGetter
	seats SeatStore
}

func New(trips TripGetter, seats SeatStore) *Service {
	return &Service{trips: trips, seats: seats}
}

// Layout returns the trip's derived seat layout. A trip whose seat rows were
// never materialized gets them provisioned from the vehicle template first;
// the insert is idempotent, so two first-time requests racing is harmless.
func (s *Service) Layout(ctx context.Context, tripID int64, adminView bool) (*seatmap.Layout, error) {
	const op = "service.seats.Layout"

	rows, err := s.seats.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if len(rows) == 0 {
		trip, err := s.trips.Get(ctx, tripID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s:%w", op, ErrTripNotFound)
			}
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		if err := s.seats.Provision(ctx, seatmap.Generate(tripID, trip.Vehicle)); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if rows, err = s.seats.ListByTrip(ctx, tripID); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	layout := seatmap.Derive(rows, adminView)
	return &layout, nil
}

// Force sets one seat's status directly, bypassing the guarded transition.
// Admin only.
func (s *Service) Force(ctx context.Context, seatID int64, to domain.SeatStatus) error {
	const op = "service.seats.Force"

	if err := s.seats.ForceStatus(ctx, seatID, to); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
