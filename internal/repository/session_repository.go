package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/localstore"

	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix namespaces persisted session records
const SessionKeyPrefix = "safgati_user:"

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository persists login sessions keyed by session id
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

func sessionKey(id string) string {
	return SessionKeyPrefix + id
}

type redisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository stores sessions in redis with a TTL matching their expiry
func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessionRepository{client: client}
}

func (r *redisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("failed to save session: already expired")
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session := &domain.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type storageSessionRepository struct {
	storage localstore.Storage
	now     func() time.Time
}

// NewStorageSessionRepository keeps sessions in local storage. Expired records
// are removed lazily when read.
func NewStorageSessionRepository(storage localstore.Storage) SessionRepository {
	return &storageSessionRepository{storage: storage, now: time.Now}
}

func (r *storageSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.storage.SetItem(ctx, sessionKey(session.ID), string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *storageSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	raw, ok, err := r.storage.GetItem(ctx, sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(raw), session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if !r.now().Before(session.ExpiresAt) {
		_ = r.storage.RemoveItem(ctx, sessionKey(id))
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *storageSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.RemoveItem(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
