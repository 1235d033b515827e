package returns

import (
	"context"
	"log"
	"time"

	"github.com/mosewear/mose-webshop-sub004/internal/database"
)

// RedisDedup begrenst dubbele neveneffecten met SETNX-sleutels.
// Webhooks worden at-least-once geleverd; de databasestatus is de echte
// waarheid, Redis sluit alleen het venster tussen lezen en schrijven.
type RedisDedup struct{}

func NewRedisDedup() *RedisDedup {
	return &RedisDedup{}
}

func (RedisDedup) ClaimOnce(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := database.Redis.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		// Redis plat: we kiezen beschikbaarheid boven dedupe; de
		// CAS-updates in ScyllaDB blijven de harde grens.
		log.Printf("⚠️ Redis-dedupe onbereikbaar (%v) — claim toegestaan", err)
		return true
	}
	return ok
}

func (RedisDedup) Release(ctx context.Context, key string) {
	database.Redis.Del(ctx, key)
}
