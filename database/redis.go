package database

import (
	"context"
	"log"
	"time"
	"tripsplit-backend/config"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

func ConnectRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr: config.AppConfig.RedisURL,
	})

	_, err := Redis.Ping(context.Background()).Result()
	if err != nil {
		log.Println("⚠️  Redis not available, running without cache:", err)
		Redis = nil
		return
	}

	log.Println("✅ Redis connected successfully")
}

// CacheGet returns the cached payload for key, or nil when the cache is
// unavailable or the key is missing.
func CacheGet(ctx context.Context, key string) []byte {
	if Redis == nil {
		return nil
	}
	val, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return val
}

// CacheSet stores a payload with a TTL; a dead cache is a silent no-op.
func CacheSet(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if Redis == nil {
		return
	}
	if err := Redis.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Printf("⚠️  Failed to cache %s: %v", key, err)
	}
}

// CacheDelete drops keys after a write invalidates them.
func CacheDelete(ctx context.Context, keys ...string) {
	if Redis == nil || len(keys) == 0 {
		return
	}
	if err := Redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️  Failed to invalidate cache: %v", err)
	}
}
