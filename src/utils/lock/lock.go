// Package lock implements the redis lease every settlement job takes
// before touching shared state. One settler instance wins a tick, the
// others skip it.
package lock

import (
	"context"
	"time"

	"github.com/onton-events/settler/src/utils/cache"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Client is the slice of the redis API the lock needs. Kept narrow so
// tests can fake it.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type Lock struct {
	client Client
	log    *logrus.Entry

	jobName string
	runId   string
	lease   time.Duration
}

func New(client Client, log *logrus.Entry, jobName string, lease time.Duration) (self *Lock) {
	self = &Lock{
		client:  client,
		log:     log,
		jobName: jobName,
		lease:   lease,
	}
	return
}

// TryAcquire takes the lease if no one else holds it. A false return
// means another instance is running this job and the caller should
// skip the tick, not wait.
func (self *Lock) TryAcquire(ctx context.Context, runId string) (acquired bool, err error) {
	acquired, err = self.client.SetNX(ctx, cache.JobLock(self.jobName), runId, self.lease).Result()
	if err != nil {
		return
	}
	if acquired {
		self.runId = runId
	}
	return
}

// Refresh extends the lease mid-run. Long batches call this between
// chunks so the lock survives past the initial lease.
func (self *Lock) Refresh(ctx context.Context) (err error) {
	ok, err := self.client.Expire(ctx, cache.JobLock(self.jobName), self.lease).Result()
	if err != nil {
		return
	}
	if !ok {
		self.log.WithField("job", self.jobName).Warn("Lock expired before refresh, another instance may be running")
	}
	return
}

// Release drops the lease, but only if this run still owns it. An
// expired lease taken over by another instance is left alone.
func (self *Lock) Release(ctx context.Context) (err error) {
	key := cache.JobLock(self.jobName)

	holder, err := self.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return
	}
	if holder != self.runId {
		self.log.WithField("job", self.jobName).
			WithField("holder", holder).
			Warn("Lock held by another run, not releasing")
		return nil
	}

	err = self.client.Del(ctx, key).Err()
	return
}

// ForceClearAll removes every job lock. Called once at boot: a crashed
// instance leaves its lease behind and nothing else may run until it
// expires, so a restart clears the slate.
func ForceClearAll(ctx context.Context, client Client, log *logrus.Entry) (cleared int, err error) {
	var cursor uint64
	for {
		var keys []string
		keys, cursor, err = client.Scan(ctx, cursor, cache.JobLock("*"), 100).Result()
		if err != nil {
			return
		}

		if len(keys) > 0 {
			err = client.Del(ctx, keys...).Err()
			if err != nil {
				return
			}
			cleared += len(keys)
		}

		if cursor == 0 {
			break
		}
	}

	if cleared > 0 {
		log.WithField("cleared", cleared).Info("Force-cleared stale job locks")
	}
	return
}
