package kv

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cmdable is the slice of the redis client the application uses. The auth
// flow stores password-reset tokens here; the voting core never touches it.
type Cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Init connects to Redis using REDIS_URL (redis://... form) or the default
// local address. Fatal on an unreachable server: the reset flow depends on it.
func Init() *redis.Client {
	opts := &redis.Options{Addr: "localhost:6379"}
	if url := os.Getenv("REDIS_URL"); url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	log.Println("Redis connection established")
	return client
}
