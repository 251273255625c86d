// Package admin exposes the operator surface: payment oversight, refunds,
// and direct seat overrides outside the guarded booking transitions.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlduyvu/vebus-go/internal/domain"
	redisx "github.com/nlduyvu/vebus-go/internal/redis"
	"github.com/nlduyvu/vebus-go/internal/repository"
	postgresrepo "github.com/nlduyvu/vebus-go/internal/repository/postgres"
	redisrepo "github.com/nlduyvu/vebus-go/internal/repository/redis"
	"github.com/nlduyvu/vebus-go/internal/uow"
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.TripsPubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.TripsPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// ListPayments returns every payment record, newest first.
func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	const op = "service.admin.ListPayments"

	payments, err := s.store.Payments().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}

// PaymentStats aggregates payment counts per status plus completed revenue.
func (s *Service) PaymentStats(ctx context.Context) (*domain.PaymentStats, error) {
	const op = "service.admin.PaymentStats"

	stats, err := s.store.Payments().Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

// RefundPayment moves a completed payment to refunded.
//
// Returns:
//   - error: admin.ErrPaymentNotFound if no payment carries the ID.
//   - error: admin.ErrNotRefundable if the payment is not completed.
func (s *Service) RefundPayment(ctx context.Context, paymentID int64) error {
	const op = "service.admin.RefundPayment"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Payments().With(tx).Refund(ctx, paymentID); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("%s: %w", op, ErrPaymentNotFound)
			case errors.Is(err, repository.ErrBadTransition):
				return fmt.Errorf("%s: %w", op, ErrNotRefundable)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	return err
}

// ForceSeatStatus sets one seat's status directly, bypassing the guarded
// available/booked transition, and invalidates the trip's cached seat map.
func (s *Service) ForceSeatStatus(
	ctx context.Context,
	tripID, seatID int64,
	status domain.SeatStatus,
) error {
	const op = "service.admin.ForceSeatStatus"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Seats().With(tx).ForceStatus(ctx, seatID, status); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrSeatNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateTrip(ctx, tripID)
			_ = s.pubsub.PublishTripChanged(ctx, tripID)
		})
		return nil
	})

	return err
}
