package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/seashop/core/config"
)

// RedisStore keeps session state in Redis under session:<chat_id>.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore connects to Redis and verifies connectivity with a ping.
func NewRedisStore(cfg coreconfig.RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get returns the stored state name, or empty when the chat has no session.
func (s *RedisStore) Get(ctx context.Context, chatID int64) (string, error) {
	state, err := s.client.Get(ctx, key(chatID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: get %d: %w", chatID, err)
	}
	return state, nil
}

// Set stores the state name for the chat without expiry.
func (s *RedisStore) Set(ctx context.Context, chatID int64, state string) error {
	if err := s.client.Set(ctx, key(chatID), state, 0).Err(); err != nil {
		return fmt.Errorf("session: set %d: %w", chatID, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}
