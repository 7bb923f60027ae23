package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Deduper makes at-least-once delivery idempotent by remembering processed
// message ids.
type Deduper interface {
	// Seen marks the message id as processed and reports whether it had been
	// processed before.
	Seen(ctx context.Context, messageID string) bool
}

const dedupKeyPrefix = "appointment:msg:"

type redisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisDeduper tracks message ids with SETNX keys. Redis being down fails
// open: a redelivered message may then be processed twice, which the
// duplicate-booking check absorbs.
func NewRedisDeduper(client *redis.Client, ttl time.Duration, log *logrus.Logger) Deduper {
	return &redisDeduper{client: client, ttl: ttl, log: log}
}

func (d *redisDeduper) Seen(ctx context.Context, messageID string) bool {
	key := fmt.Sprintf("%s%s", dedupKeyPrefix, messageID)

	fresh, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.log.Warnf("Dedup check failed for message %s, processing anyway: %+v", messageID, err)
		return false
	}
	return !fresh
}
