package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// Item keys within a session row set. One row per (session_id, item_key).
const (
	itemBasket    = "basket"
	itemChallenge = "secure3d"
)

// PgSessionStore keeps server-side session state (basket snapshot, pending
// 3-D Secure challenge payload) in the checkout_sessions table. Implements
// domain.BasketProvider and domain.ChallengeStore.
type PgSessionStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPgSessionStore(pool *pgxpool.Pool, logger *slog.Logger) *PgSessionStore {
	return &PgSessionStore{
		pool:   pool,
		logger: logger.With("adapter", "pg_session_store"),
	}
}

func (s *PgSessionStore) get(ctx context.Context, sessionID, itemKey string) (string, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM checkout_sessions WHERE session_id = $1 AND item_key = $2`,
		sessionID, itemKey,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", pgx.ErrNoRows
		}
		return "", fmt.Errorf("query session item %s: %w", itemKey, err)
	}
	return payload, nil
}

func (s *PgSessionStore) put(ctx context.Context, sessionID, itemKey, payload string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checkout_sessions (session_id, item_key, payload, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, item_key) DO UPDATE SET payload = $3, updated_at = $4`,
		sessionID, itemKey, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert session item %s: %w", itemKey, err)
	}
	return nil
}

// GetBasketData returns the basket snapshot stored for the session, or
// domain.ErrBasketUnavailable when the session has no basket.
func (s *PgSessionStore) GetBasketData(ctx context.Context, sessionID string) (*domain.BasketSnapshot, error) {
	payload, err := s.get(ctx, sessionID, itemBasket)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBasketUnavailable
		}
		return nil, err
	}
	var snapshot domain.BasketSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, "corrupt basket snapshot in session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: corrupt snapshot", domain.ErrBasketUnavailable)
	}
	return &snapshot, nil
}

// PutBasketData stores a basket snapshot for the session. Used by the basket
// workflow that feeds the checkout; the orchestrator only reads.
func (s *PgSessionStore) PutBasketData(ctx context.Context, sessionID string, snapshot domain.BasketSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal basket snapshot: %w", err)
	}
	return s.put(ctx, sessionID, itemBasket, string(payload))
}

func (s *PgSessionStore) Put(ctx context.Context, sessionID string, payload string) error {
	return s.put(ctx, sessionID, itemChallenge, payload)
}

func (s *PgSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	payload, err := s.get(ctx, sessionID, itemChallenge)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrChallengeStateMissing
		}
		return "", err
	}
	return payload, nil
}

func (s *PgSessionStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM checkout_sessions WHERE session_id = $1 AND item_key = $2`,
		sessionID, itemChallenge,
	)
	if err != nil {
		return fmt.Errorf("clear challenge state: %w", err)
	}
	return nil
}
