package lock

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onton-events/settler/src/utils/cache"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type fakeRedis struct {
	mtx  sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	_, ok := f.data[key]
	return redis.NewBoolResult(ok, nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

type LockTestSuite struct {
	suite.Suite

	ctx   context.Context
	redis *fakeRedis
}

func (s *LockTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.redis = newFakeRedis()
}

func (s *LockTestSuite) newLock(jobName string) *Lock {
	return New(s.redis, logger.NewSublogger("test"), jobName, time.Minute)
}

func (s *LockTestSuite) TestAcquireRelease() {
	lock := s.newLock("orders")

	acquired, err := lock.TryAcquire(s.ctx, "run-1")
	s.NoError(err)
	s.True(acquired)

	err = lock.Release(s.ctx)
	s.NoError(err)

	acquired, err = lock.TryAcquire(s.ctx, "run-2")
	s.NoError(err)
	s.True(acquired)
}

func (s *LockTestSuite) TestConcurrentAcquireSingleWinner() {
	var wins int64
	var mtx sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lock := s.newLock("clicks")
			acquired, err := lock.TryAcquire(s.ctx, "run")
			s.NoError(err)
			if acquired {
				mtx.Lock()
				wins++
				mtx.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int64(1), wins)
}

func (s *LockTestSuite) TestIndependentJobsDoNotBlock() {
	ordersLock := s.newLock("orders")
	clicksLock := s.newLock("clicks")

	acquired, err := ordersLock.TryAcquire(s.ctx, "run-1")
	s.NoError(err)
	s.True(acquired)

	acquired, err = clicksLock.TryAcquire(s.ctx, "run-2")
	s.NoError(err)
	s.True(acquired)
}

func (s *LockTestSuite) TestReleaseSkipsForeignHolder() {
	lock := s.newLock("orders")

	acquired, err := lock.TryAcquire(s.ctx, "run-1")
	s.NoError(err)
	s.True(acquired)

	// Simulate lease expiry and takeover by another instance
	s.redis.data[cache.JobLock("orders")] = "run-other"

	err = lock.Release(s.ctx)
	s.NoError(err)
	s.Equal("run-other", s.redis.data[cache.JobLock("orders")])
}

func (s *LockTestSuite) TestForceClearAll() {
	for _, jobName := range []string{"orders", "clicks", "notifier"} {
		lock := s.newLock(jobName)
		acquired, err := lock.TryAcquire(s.ctx, "run")
		s.NoError(err)
		s.True(acquired)
	}

	cleared, err := ForceClearAll(s.ctx, s.redis, logger.NewSublogger("test"))
	s.NoError(err)
	s.Equal(3, cleared)

	lock := s.newLock("orders")
	acquired, err := lock.TryAcquire(s.ctx, "run")
	s.NoError(err)
	s.True(acquired)
}

func TestLockTestSuite(t *testing.T) {
	suite.Run(t, new(LockTestSuite))
}
