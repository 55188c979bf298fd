package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoDraft is returned by DraftStore.Load when the session has no draft.
var ErrNoDraft = errors.New("no assessment draft")

// DraftStore holds one wizard state per session.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, s State) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisDraftStore keeps drafts under wizard:draft:<session id>.
type RedisDraftStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{redis: client, ttl: ttl}
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("wizard:draft:%s", sessionID)
}

func (r *RedisDraftStore) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := r.redis.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from Redis: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &s, nil
}

func (r *RedisDraftStore) Save(ctx context.Context, sessionID string, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := r.redis.Set(ctx, draftKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft to Redis: %w", err)
	}
	return nil
}

func (r *RedisDraftStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.redis.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}

// MemoryDraftStore is the in-process DraftStore used without Redis.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]State
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]State)}
}

func (m *MemoryDraftStore) Load(_ context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.drafts[sessionID]
	if !ok {
		return nil, ErrNoDraft
	}
	s.Draft = s.Draft.Clone()
	return &s, nil
}

func (m *MemoryDraftStore) Save(_ context.Context, sessionID string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Draft = s.Draft.Clone()
	m.drafts[sessionID] = s
	return nil
}

func (m *MemoryDraftStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
	return nil
}

// Len reports how many drafts are held.
func (m *MemoryDraftStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}
