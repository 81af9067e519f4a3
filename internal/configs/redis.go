package config

import (
	"log"

	"github.com/redis/rueidis"
)

// NewRedisClient connects to redis for the access-resolution cache.
// An empty address disables caching and returns nil.
func NewRedisClient(addr string) rueidis.Client {
	if addr == "" {
		return nil
	}

	redisClient, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress: []string{addr},
		},
	)
	if err != nil {
		log.Fatalf("failed to create redis client: %v", err)
	}

	return redisClient
}
