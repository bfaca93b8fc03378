package clicks

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/onton-events/settler/src/utils/cache"
	"github.com/onton-events/settler/src/utils/config"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type fakeQueue struct {
	mtx   sync.Mutex
	items []string
}

func (f *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for _, value := range values {
		f.items = append(f.items, string(value.([]byte)))
	}
	return redis.NewIntResult(int64(len(f.items)), nil)
}

func (f *fakeQueue) LPopCount(ctx context.Context, key string, count int) *redis.StringSliceCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if len(f.items) == 0 {
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
	if count > len(f.items) {
		count = len(f.items)
	}
	popped := f.items[:count]
	f.items = f.items[count:]
	return redis.NewStringSliceResult(popped, nil)
}

func (f *fakeQueue) LLen(ctx context.Context, key string) *redis.IntCmd {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return redis.NewIntResult(int64(len(f.items)), nil)
}

type ClicksTestSuite struct {
	suite.Suite

	ctx     context.Context
	config  *config.Config
	queue   *fakeQueue
	monitor *monitor_settler.Monitor
}

func (s *ClicksTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.queue = &fakeQueue{}
	s.monitor = monitor_settler.NewMonitor().WithMaxHistorySize(10)
}

func (s *ClicksTestSuite) TestEnqueuePushesPayload() {
	queue := NewQueue(s.queue)
	queue.Enqueue(s.ctx, "abc123", 42)

	s.Len(s.queue.items, 1)

	var click Click
	err := json.Unmarshal([]byte(s.queue.items[0]), &click)
	s.NoError(err)
	s.Equal("abc123", click.LinkHash)
	s.Equal(int64(42), click.UserId)
	s.NotZero(click.ClickedAt)
}

func (s *ClicksTestSuite) TestRunOnEmptyQueue() {
	consumer := NewConsumer(s.config).
		WithClient(s.queue).
		WithMonitor(s.monitor)

	err := consumer.Run(s.ctx)
	s.NoError(err)
	s.Zero(s.monitor.Report.Clicks.State.BatchesConsumed.Load())
}

func (s *ClicksTestSuite) TestMalformedPayloadsAreDropped() {
	consumer := NewConsumer(s.config).
		WithClient(s.queue).
		WithMonitor(s.monitor)

	err := consumer.consumeBatch(s.ctx, []string{"not-json", "{broken"})
	s.NoError(err)
	s.Equal(uint64(2), s.monitor.Report.Clicks.Errors.MalformedPayloads.Load())
	s.Zero(s.monitor.Report.Clicks.State.ClicksSaved.Load())
}

func (s *ClicksTestSuite) TestAggregatesResolvedClicksPerLink() {
	consumer := NewConsumer(s.config).
		WithClient(s.queue).
		WithMonitor(s.monitor)

	// Link resolution is memoized, unresolvable hashes as zero
	consumer.linkMemo.Set("link-a", int64(7), gocache.DefaultExpiration)
	consumer.linkMemo.Set("link-b", int64(0), gocache.DefaultExpiration)

	var payloads []string
	for _, click := range []Click{
		{LinkHash: "link-a", UserId: 1, ClickedAt: 1700000000},
		{LinkHash: "link-a", UserId: 2, ClickedAt: 1700000001},
		{LinkHash: "link-b", UserId: 3, ClickedAt: 1700000002},
		{LinkHash: "link-a", UserId: 4, ClickedAt: 1700000003},
		{LinkHash: "link-b", UserId: 5, ClickedAt: 1700000004},
	} {
		payload, err := json.Marshal(click)
		s.Require().NoError(err)
		payloads = append(payloads, string(payload))
	}

	rows, perLink, err := consumer.buildBatch(s.ctx, payloads)
	s.NoError(err)

	// 3 resolvable clicks insert 3 rows, one counter bump of 3 for the
	// link; the unresolvable ones are dropped
	s.Len(rows, 3)
	for _, row := range rows {
		s.Equal(int64(7), row.AffiliateLinkId)
	}
	s.Len(perLink, 1)
	s.Equal(int64(3), perLink[7])
	s.Equal(uint64(2), s.monitor.Report.Clicks.State.ClicksDropped.Load())
}

func (s *ClicksTestSuite) TestQueueKeyIsStable() {
	s.Equal("onton:queue:affiliate_clicks", cache.ClickQueue())
}

func TestClicksTestSuite(t *testing.T) {
	suite.Run(t, new(ClicksTestSuite))
}
