package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "admin_session:"

// SessionStore holds opaque bearer tokens for the duration of an admin
// session.
type SessionStore interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (s *redisSessionStore) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	err := s.rdb.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err()
	if err != nil {
		return fmt.Errorf("session store: failed to save session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Lookup(ctx context.Context, token string) (int64, error) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("session store: failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session store: corrupt session value: %w", err)
	}
	return userID, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session store: failed to delete session: %w", err)
	}
	return nil
}
