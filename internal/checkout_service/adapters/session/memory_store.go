package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// MemorySessionStore is the single-node implementation of the session
// collaborators, used in development and tests.
type MemorySessionStore struct {
	mu    sync.RWMutex
	items map[string]map[string]string // session_id -> item_key -> payload
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{items: make(map[string]map[string]string)}
}

func (s *MemorySessionStore) read(sessionID, itemKey string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[sessionID]
	if !ok {
		return "", false
	}
	payload, ok := session[itemKey]
	return payload, ok
}

func (s *MemorySessionStore) write(sessionID, itemKey, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[sessionID]
	if !ok {
		session = make(map[string]string)
		s.items[sessionID] = session
	}
	session[itemKey] = payload
}

func (s *MemorySessionStore) GetBasketData(ctx context.Context, sessionID string) (*domain.BasketSnapshot, error) {
	payload, ok := s.read(sessionID, itemBasket)
	if !ok {
		return nil, domain.ErrBasketUnavailable
	}
	var snapshot domain.BasketSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("%w: corrupt snapshot", domain.ErrBasketUnavailable)
	}
	return &snapshot, nil
}

func (s *MemorySessionStore) PutBasketData(ctx context.Context, sessionID string, snapshot domain.BasketSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal basket snapshot: %w", err)
	}
	s.write(sessionID, itemBasket, string(payload))
	return nil
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, payload string) error {
	s.write(sessionID, itemChallenge, payload)
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	payload, ok := s.read(sessionID, itemChallenge)
	if !ok {
		return "", domain.ErrChallengeStateMissing
	}
	return payload, nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.items[sessionID]; ok {
		delete(session, itemChallenge)
	}
	return nil
}
