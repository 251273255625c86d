package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nlduyvu/vebus-go/internal/domain"
	redisx "github.com/nlduyvu/vebus-go/internal/redis"
)

// SessionStore keeps the workflow handoff state: booking sessions live for
// the payment window and vanish on expiry, which is what releases an
// abandoned purchase; pairing sessions hold a two-slot trip selection.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// SaveBooking writes a booking session with the given TTL and indexes it by
// provider transaction ID so callbacks can find it.
func (s *SessionStore) SaveBooking(
	ctx context.Context,
	session *domain.BookingSession,
	ttl time.Duration,
) error {
	const op = "redis.SessionStore.SaveBooking"

	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	key := redisx.KeyBookingSession(session.ID.String())
	if err := s.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if session.TransactionID != "" {
		txnKey := redisx.KeySessionByTxn(session.TransactionID)
		if err := s.rdb.Set(ctx, txnKey, session.ID.String(), ttl).Err(); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	return nil
}

// GetBooking loads a booking session. ok is false when the session never
// existed or its payment window has expired.
func (s *SessionStore) GetBooking(ctx context.Context, id string) (*domain.BookingSession, bool, error) {
	const op = "redis.SessionStore.GetBooking"

	b, err := s.rdb.Get(ctx, redisx.KeyBookingSession(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s:%w", op, err)
	}

	var session domain.BookingSession
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, false, fmt.Errorf("%s:%w", op, err)
	}

	return &session, true, nil
}

// GetBookingByTransaction resolves a provider transaction ID to its session.
func (s *SessionStore) GetBookingByTransaction(
	ctx context.Context,
	transactionID string,
) (*domain.BookingSession, bool, error) {
	const op = "redis.SessionStore.GetBookingByTransaction"

	id, err := s.rdb.Get(ctx, redisx.KeySessionByTxn(transactionID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s:%w", op, err)
	}

	return s.GetBooking(ctx, id)
}

// DeleteBooking clears a session and its transaction index. Called on
// successful reconciliation and on explicit cancellation.
func (s *SessionStore) DeleteBooking(ctx context.Context, session *domain.BookingSession) error {
	keys := []string{redisx.KeyBookingSession(session.ID.String())}
	if session.TransactionID != "" {
		keys = append(keys, redisx.KeySessionByTxn(session.TransactionID))
	}

	return s.rdb.Del(ctx, keys...).Err()
}

// SavePairing writes a pairing session.
func (s *SessionStore) SavePairing(ctx context.Context, id string, v any, ttl time.Duration) error {
	const op = "redis.SessionStore.SavePairing"

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.rdb.Set(ctx, redisx.KeyPairingSession(id), b, ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// GetPairing loads a pairing session into out.
func (s *SessionStore) GetPairing(ctx context.Context, id string, out any) (bool, error) {
	const op = "redis.SessionStore.GetPairing"

	b, err := s.rdb.Get(ctx, redisx.KeyPairingSession(id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return true, nil
}

// DeletePairing clears a pairing session.
func (s *SessionStore) DeletePairing(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisx.KeyPairingSession(id)).Err()
}
