package repo

import (
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var _ SessionStore = (*RedisSessions)(nil)

// RedisSessions keeps sessions as JSON values that redis expires on its own.
type RedisSessions struct {
	c *redis.Client
}

// NewRedisClient connects to redis and pings it once.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return client, nil
}

func NewRedisSessions(c *redis.Client) *RedisSessions {
	return &RedisSessions{c: c}
}

func (r *RedisSessions) Create(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := r.c.Set(ctx, sessionKeyPrefix+s.ID, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session, %w", err)
	}

	return nil
}

func (r *RedisSessions) Get(ctx context.Context, id string) (*model.Session, error) {
	b, err := r.c.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch session, %w", err)
	}

	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("malformed session, %w", err)
	}

	return &s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := r.c.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session, %w", err)
	}

	return nil
}
