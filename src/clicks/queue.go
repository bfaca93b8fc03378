package clicks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/onton-events/settler/src/utils/cache"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Click is one affiliate link hit as queued by the edge
type Click struct {
	LinkHash  string `json:"link_hash"`
	UserId    int64  `json:"user_id"`
	ClickedAt int64  `json:"clicked_at"`
}

// QueueClient is the slice of the redis API the queue needs
type QueueClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LPopCount(ctx context.Context, key string, count int) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Queue is the producer side of click ingestion. Enqueue never returns
// an error: a click that cannot be queued is lost, the click path must
// not slow down or fail for the visitor.
type Queue struct {
	client QueueClient
	log    *logrus.Entry
}

func NewQueue(client QueueClient) (self *Queue) {
	self = &Queue{
		client: client,
		log:    logger.NewSublogger("click-queue"),
	}
	return
}

func (self *Queue) Enqueue(ctx context.Context, linkHash string, userId int64) {
	click := Click{
		LinkHash:  linkHash,
		UserId:    userId,
		ClickedAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(&click)
	if err != nil {
		self.log.WithError(err).Error("Failed to marshal click")
		return
	}

	err = self.client.RPush(ctx, cache.ClickQueue(), payload).Err()
	if err != nil {
		self.log.WithError(err).WithField("linkHash", linkHash).Warn("Failed to enqueue click, dropping")
	}
}
