package repository

import (
	"context"
	"fmt"
	"roombook/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const defaultLockKeyPrefix = "roombook:"

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken over is never released by its old owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisRoomLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	wait      time.Duration
	log       *logger.Logger
}

func NewRedisRoomLocker(client *redis.Client, keyPrefix string, ttl, wait time.Duration, log *logger.Logger) *RedisRoomLocker {
	if client == nil {
		panic("redis client cannot be nil for RedisRoomLocker")
	}
	if keyPrefix == "" {
		keyPrefix = defaultLockKeyPrefix
	}
	return &RedisRoomLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		wait:      wait,
		log:       log,
	}
}

func (l *RedisRoomLocker) roomLockKey(roomID string) string {
	return fmt.Sprintf("%sroom:%s:lock", l.keyPrefix, roomID)
}

func (l *RedisRoomLocker) Lock(ctx context.Context, roomID string) (func(), error) {
	key := l.roomLockKey(roomID)
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrRoomLocked
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("Failed to release room lock", "room_id", roomID, "key", key, "error", err)
		}
	}, nil
}
