package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/damiancxliew/web-forum/internal/core/domain"
)

const (
	identityKey = "forum:session:identity"
	tokenKey    = "forum:session:token"

	defaultConnectTimeout = 5 * time.Second
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisStore mirrors the session into Redis under well-known keys. Entries
// carry no TTL: a session survives until an explicit logout, matching the
// file store's semantics.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an established Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) LoadIdentity() (*domain.Identity, error) {
	raw, err := s.client.Get(context.Background(), identityKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &identity, nil
}

func (s *RedisStore) SaveIdentity(identity *domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.client.Set(context.Background(), identityKey, raw, 0).Err()
}

func (s *RedisStore) ClearIdentity() error {
	return s.client.Del(context.Background(), identityKey).Err()
}

func (s *RedisStore) LoadToken() (string, error) {
	token, err := s.client.Get(context.Background(), tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) SaveToken(token string) error {
	return s.client.Set(context.Background(), tokenKey, token, 0).Err()
}

func (s *RedisStore) ClearToken() error {
	return s.client.Del(context.Background(), tokenKey).Err()
}
