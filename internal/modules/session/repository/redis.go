package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore keeps sessions as session:<id> keys holding the user id,
// expiring with the session.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Save(ctx context.Context, session *entity.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	return s.client.Set(ctx, keyPrefix+session.ID, session.UserID, ttl).Err()
}

func (s *redisStore) Find(ctx context.Context, id string) (*entity.Session, error) {
	key := keyPrefix + id

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: malformed user id: %w", id, err)
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		ID:        id,
		UserID:    uint(userID),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}
