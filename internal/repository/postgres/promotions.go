package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/repository"
)

type PromotionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PromotionRepo) With(db DB) *PromotionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PromotionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetByCode retrieves a promotion by its code.
//
// Returns repository.ErrNotFound if the code does not exist.
func (r *PromotionRepo) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	const op = "postgres.PromotionRepo.GetByCode"

	db := r.handle()

	var p domain.Promotion
	err := db.QueryRow(ctx,
		`SELECT code, discount_type, discount_value, min_amount, max_discount,
		        usage_limit, used_count, applicable_to_round_trip,
		        start_date, end_date
		 FROM promotions WHERE code = $1`,
		code,
	).Scan(
		&p.Code, &p.DiscountType, &p.DiscountValue, &p.MinAmount, &p.MaxDiscount,
		&p.UsageLimit, &p.UsedCount, &p.ApplicableToRoundTrip,
		&p.StartDate, &p.EndDate,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

// IncrementUsage counts one redemption against the code's usage limit.
//
// Returns repository.ErrConflict if the limit is already exhausted.
func (r *PromotionRepo) IncrementUsage(ctx context.Context, code string) error {
	const op = "postgres.PromotionRepo.IncrementUsage"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE promotions SET used_count = used_count + 1
		 WHERE code = $1 AND (usage_limit <= 0 OR used_count < usage_limit)`,
		code,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}
