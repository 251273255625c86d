package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type SeatRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatRepo) With(db DB) *SeatRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListByTrip returns the full seat map for a trip, empty if none has been
// provisioned yet.
func (r *SeatRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.TripSeat, error) {
	const op = "postgres.SeatRepo.ListByTrip"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, trip_id, seat_number, seat_type, status
		 FROM trip_seats WHERE trip_id = $1`,
		tripID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var seats []domain.TripSeat
	for rows.Next() {
		var s domain.TripSeat
		if err := rows.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.SeatType, &s.Status); err != nil {
			return nil, wrapDBErr(op, err)
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return seats, nil
}

// Get returns one seat.
//
// Returns repository.ErrNotFound if the seat does not exist.
func (r *SeatRepo) Get(ctx context.Context, seatID int64) (*domain.TripSeat, error) {
	const op = "postgres.SeatRepo.Get"

	db := r.handle()

	var s domain.TripSeat
	err := db.QueryRow(ctx,
		`SELECT id, trip_id, seat_number, seat_type, status
		 FROM trip_seats WHERE id = $1`,
		seatID,
	).Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.SeatType, &s.Status)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}

// Provision bulk-creates the given seats for a trip. Provisioning is
// idempotent: seats that already exist for the trip are left untouched.
func (r *SeatRepo) Provision(ctx context.Context, seats []domain.TripSeat) error {
	const op = "postgres.SeatRepo.Provision"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(
			`INSERT INTO trip_seats(trip_id, seat_number, seat_type, status)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (trip_id, seat_number) DO NOTHING`,
			s.TripID, s.SeatNumber, s.SeatType, s.Status,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Transition moves a seat from one status to another. The expected current
// status guards against concurrent booking of the same seat.
//
// Returns repository.ErrSeatUnavailable if the seat is not in the expected
// status.
func (r *SeatRepo) Transition(ctx context.Context, seatID int64, from, to domain.SeatStatus) error {
	const op = "postgres.SeatRepo.Transition"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE trip_seats SET status = $3 WHERE id = $1 AND status = $2`,
		seatID, from, to,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrSeatUnavailable)
	}

	return nil
}

// ForceStatus sets a seat's status regardless of its current value. Admin
// view mode only.
func (r *SeatRepo) ForceStatus(ctx context.Context, seatID int64, to domain.SeatStatus) error {
	const op = "postgres.SeatRepo.ForceStatus"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE trip_seats SET status = $2 WHERE id = $1`,
		seatID, to,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
