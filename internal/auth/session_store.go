package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-gin-invitation/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps live sessions so a signed token can be revoked before it
// expires.
type SessionStore interface {
	Save(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) key(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// MemorySessionStore is the single-process fallback when Redis is off.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]model.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
