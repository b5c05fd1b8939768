package storage

import (
	"log"
	"os"

	"github.com/go-redis/redis/v8"
)

// Redis holds refresh tokens and processed-webhook-event keys. Handlers must
// tolerate it being nil (tests run without it).
var Redis *redis.Client

func InitializeRedis() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
		log.Println("⚠️  REDIS_URL not set, using localhost:6379 (development mode)")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	})

	log.Println("🔧 Redis initialized with address:", redisURL)
}
