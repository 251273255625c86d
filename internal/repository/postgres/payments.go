package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PaymentRepo) With(db DB) *PaymentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PaymentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const paymentColumns = `id, booking_group_id, amount, payment_method,
       payment_status, transaction_id, payment_date`

// Create inserts a payment. New payments start pending.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO payments(booking_group_id, amount, payment_method,
		        payment_status, transaction_id, payment_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.BookingGroupID, p.Amount, p.PaymentMethod,
		p.PaymentStatus, p.TransactionID, p.PaymentDate,
	).Scan(&p.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// List returns all payments, newest first.
func (r *PaymentRepo) List(ctx context.Context) ([]domain.Payment, error) {
	const op = "postgres.PaymentRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY payment_date DESC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.BookingGroupID, &p.Amount, &p.PaymentMethod,
			&p.PaymentStatus, &p.TransactionID, &p.PaymentDate,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return payments, nil
}

// Stats aggregates payment counts by status and completed revenue.
func (r *PaymentRepo) Stats(ctx context.Context) (*domain.PaymentStats, error) {
	const op = "postgres.PaymentRepo.Stats"

	db := r.handle()

	var s domain.PaymentStats
	err := db.QueryRow(ctx,
		`SELECT
		   count(*) FILTER (WHERE payment_status = 'pending'),
		   count(*) FILTER (WHERE payment_status = 'completed'),
		   count(*) FILTER (WHERE payment_status = 'failed'),
		   count(*) FILTER (WHERE payment_status = 'refunded'),
		   COALESCE(sum(amount) FILTER (WHERE payment_status = 'completed'), 0)
		 FROM payments`,
	).Scan(&s.Pending, &s.Completed, &s.Failed, &s.Refunded, &s.Revenue)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}

// UpdateStatusByTransaction sets the status of the payment carrying the
// given provider transaction ID.
//
// Returns repository.ErrNotFound if no payment matches.
func (r *PaymentRepo) UpdateStatusByTransaction(
	ctx context.Context,
	transactionID string,
	status domain.PaymentStatus,
) error {
	const op = "postgres.PaymentRepo.UpdateStatusByTransaction"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE payments SET payment_status = $2, payment_date = now()
		 WHERE transaction_id = $1`,
		transactionID, status,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Refund moves a completed payment to refunded. Administrative-only
// transition; any other current status is rejected.
func (r *PaymentRepo) Refund(ctx context.Context, id int64) error {
	const op = "postgres.PaymentRepo.Refund"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE payments SET payment_status = 'refunded'
		 WHERE id = $1 AND payment_status = 'completed'`,
		id,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)`, id,
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
