package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "shoply:cache:"

// RedisStore is a cache store backed by Redis. Expiry is delegated to Redis
// key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStoreConfig contains options for creating a RedisStore.
type NewRedisStoreConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg NewRedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// redisEnvelope carries an Entry through JSON. A document and a document
// list need distinct fields so the payload type survives the round trip.
type redisEnvelope struct {
	Doc       map[string]interface{}   `json:"doc,omitempty"`
	Docs      []map[string]interface{} `json:"docs,omitempty"`
	IsList    bool                     `json:"isList"`
	Timestamp time.Time                `json:"timestamp"`
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var env redisEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Entry{}, false, fmt.Errorf("redis entry %q is corrupt: %w", key, err)
	}
	entry := Entry{Timestamp: env.Timestamp}
	if env.IsList {
		entry.Data = env.Docs
	} else {
		entry.Data = env.Doc
	}
	return entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	env := redisEnvelope{Timestamp: entry.Timestamp}
	switch data := entry.Data.(type) {
	case map[string]interface{}:
		env.Doc = data
	case []map[string]interface{}:
		env.Docs = data
		env.IsList = true
	default:
		return fmt.Errorf("unsupported cache payload type %T for key %q", entry.Data, key)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	return s.scanAndDelete(ctx, redisKeyPrefix+prefix+"*")
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.scanAndDelete(ctx, redisKeyPrefix+"*")
}

func (s *RedisStore) scanAndDelete(ctx context.Context, match string) error {
	iter := s.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %q: %w", match, err)
	}
	return nil
}
