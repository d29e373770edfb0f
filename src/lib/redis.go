package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisMu     sync.Mutex
)

// GetRedisClient returns the shared client, or nil when REDIS_HOST is not configured.
// Callers treat a nil client as a cache miss.
func GetRedisClient() *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	redisClient = redis.NewClient(opt)
	return redisClient
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = c
	return redisClient
}

func CacheSetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := rdb.Set(ctx, key, string(b), ttl).Err(); err != nil {
		log.Printf("[redis] Failed to set value for key %s: %s\n", key, err.Error())
		return err
	}
	return nil
}

// CacheGetJSON decodes the cached value into v. It reports false on a miss or when
// no client is configured.
func CacheGetJSON(ctx context.Context, key string, v any) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		return false
	}
	val, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	} else if err != nil {
		log.Printf("[redis] Error retrieving value for %s: %s\n", key, err.Error())
		return false
	}
	if err := json.Unmarshal(val, v); err != nil {
		log.Printf("[redis] Corrupt value for %s: %s\n", key, err.Error())
		return false
	}
	return true
}

func CacheDelete(ctx context.Context, keys ...string) {
	rdb := GetRedisClient()
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[redis] Failed to delete keys %v: %s\n", keys, err.Error())
	}
}
