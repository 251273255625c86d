package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const ticketColumns = `id, user_id, trip_id, trip_seat_id, seat_number, price, status,
       booking_method, trip_type, is_return_trip, booking_group_id,
       linked_ticket_id, promotion_code, booked_at`

// Create inserts a ticket.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const op = "postgres.TicketRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO tickets(`+ticketColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.UserID, t.TripID, t.TripSeatID, t.SeatNumber, t.Price, t.Status,
		t.BookingMethod, t.TripType, t.IsReturnTrip, t.BookingGroupID,
		t.LinkedTicketID, t.PromotionCode, t.BookedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get retrieves one ticket.
//
// Returns repository.ErrNotFound if the ticket does not exist.
func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Get"

	db := r.handle()

	row := db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id,
	)

	t, err := scanTicket(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// ListByGroup returns all tickets sharing a booking group.
func (r *TicketRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByGroup"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE booking_group_id = $1
		 ORDER BY is_return_trip, booked_at`,
		groupID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectTickets(op, rows)
}

// ListByUser returns a user's tickets ordered by booking time, the order the
// grouping fold expects.
func (r *TicketRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE user_id = $1
		 ORDER BY booked_at`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectTickets(op, rows)
}

// UpdateStatus moves a ticket from one status to another.
//
// Returns repository.ErrBadTransition if the ticket is not in the expected
// status, repository.ErrNotFound if it does not exist.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	const op = "postgres.TicketRepo.UpdateStatus"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return wrapDBErr(op, err)
		}
		if !exists {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return fmt.Errorf("%s:%w", op, repository.ErrBadTransition)
	}

	return nil
}

// Confirm moves a booked ticket to confirmed. Confirming a ticket that is
// already confirmed is a no-op, so re-running a reconciliation fan-out is
// safe.
func (r *TicketRepo) Confirm(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TicketRepo.Confirm"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET status = 'confirmed'
		 WHERE id = $1 AND status IN ('booked', 'confirmed')`,
		id,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrBadTransition)
	}

	return nil
}

// Link sets the paired leg's ticket reference.
func (r *TicketRepo) Link(ctx context.Context, id, linkedID uuid.UUID) error {
	const op = "postgres.TicketRepo.Link"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET linked_ticket_id = $2 WHERE id = $1`,
		id, linkedID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes a ticket.
func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TicketRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func collectTickets(op string, rows pgx.Rows) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.UserID, &t.TripID, &t.TripSeatID, &t.SeatNumber, &t.Price,
		&t.Status, &t.BookingMethod, &t.TripType, &t.IsReturnTrip,
		&t.BookingGroupID, &t.LinkedTicketID, &t.PromotionCode, &t.BookedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
