package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/rueidis"
)

type RedisAccessCache struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewRedisAccessCache(client rueidis.Client, ttl time.Duration) *RedisAccessCache {
	return &RedisAccessCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisAccessCache) key(userID, workspaceID string) string {
	return fmt.Sprintf("acl:%s:%s", userID, workspaceID)
}

func (r *RedisAccessCache) Get(ctx context.Context, userID, workspaceID string) (string, bool) {
	cmd := r.client.B().Get().Key(r.key(userID, workspaceID)).Build()
	val, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			log.Printf("access cache read failed: %v", err)
		}
		return "", false
	}
	return val, true
}

func (r *RedisAccessCache) Put(ctx context.Context, userID, workspaceID, role string) {
	cmd := r.client.B().Set().
		Key(r.key(userID, workspaceID)).
		Value(role).
		Ex(r.ttl).
		Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		log.Printf("access cache write failed: %v", err)
	}
}

func (r *RedisAccessCache) Invalidate(ctx context.Context, userID, workspaceID string) error {
	cmd := r.client.B().Del().Key(r.key(userID, workspaceID)).Build()
	return r.client.Do(ctx, cmd).Error()
}
