// Package session keeps server-side login sessions in Redis. The browser
// only holds an opaque token; the lifetime slides on every use.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const keyPrefix = "waterworks:session:"

var ErrNotFound = errors.New("session_not_found")

var Module = fx.Module("session",
	fx.Provide(NewRedisStore),
)

type Session struct {
	Token     string       `json:"-"`
	UserID    snowflake.ID `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, userID snowflake.ID) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, cfg config.Config) Store {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID snowflake.ID) (*Session, error) {
	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrNotFound
	}
	key := keyPrefix + token
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	sess.Token = token

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "refresh session")
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
