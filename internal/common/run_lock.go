package common

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lock only while it still holds our token, so a
// lock that expired and was re-acquired by another instance is never
// released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RunLock serializes pipeline runs across instances through Redis. Locks
// carry a TTL so a crashed instance cannot wedge the pipeline forever.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RunLock{client: client, ttl: ttl}
}

func lockKey(job string) string {
	return "privatejets:runlock:" + job
}

// Acquire takes the named job's lock. It reports false when another
// instance holds it, and returns a release function otherwise.
func (l *RunLock) Acquire(ctx context.Context, job string) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, lockKey(job), token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring %s run lock: %w", job, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{lockKey(job)}, token).Err(); err != nil {
			log.Printf("[RunLock] Failed to release %s: %v", job, err)
		}
	}
	return release, true, nil
}
