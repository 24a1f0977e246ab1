package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	cacheKeyPrefix   = "sessioncache:"
)

// RedisStore keeps sessions in Redis as JSON under "session:<id>".
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a session store backed by the given Redis client.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func (s *RedisStore) Save(ctx context.Context, id string, sess Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RedisCache keeps view snapshots under "sessioncache:<id>:<view>".
type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(redisClient *redis.Client) *RedisCache {
	return &RedisCache{redis: redisClient}
}

func cacheKey(sessionID, view string) string {
	return cacheKeyPrefix + sessionID + ":" + view
}

func (c *RedisCache) PutPage(ctx context.Context, sessionID, view string, data []byte, ttl time.Duration) error {
	if err := c.redis.Set(ctx, cacheKey(sessionID, view), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache page: %w", err)
	}
	return nil
}

func (c *RedisCache) GetPage(ctx context.Context, sessionID, view string) ([]byte, error) {
	data, err := c.redis.Get(ctx, cacheKey(sessionID, view)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached page: %w", err)
	}
	return data, nil
}

func (c *RedisCache) DropPage(ctx context.Context, sessionID, view string) error {
	if err := c.redis.Del(ctx, cacheKey(sessionID, view)).Err(); err != nil {
		return fmt.Errorf("drop cached page: %w", err)
	}
	return nil
}
