package clicks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/onton-events/settler/src/utils/cache"
	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Consumer drains the click queue into the database. One tick pops
// batches until the queue is empty, resolves link hashes to link ids
// and persists the clicks together with the per-link counters.
type Consumer struct {
	config  *config.Config
	db      *gorm.DB
	client  QueueClient
	monitor *monitor_settler.Monitor
	log     *logrus.Entry

	// Link hash to id, saves one select per click on hot links
	linkMemo *gocache.Cache
}

func NewConsumer(config *config.Config) (self *Consumer) {
	self = new(Consumer)
	self.config = config
	self.log = logger.NewSublogger("click-consumer")
	self.linkMemo = gocache.New(config.Clicks.LinkMemoTTL, config.Clicks.LinkMemoCleanupInterval)
	return
}

func (self *Consumer) WithDB(db *gorm.DB) *Consumer {
	self.db = db
	return self
}

func (self *Consumer) WithClient(client QueueClient) *Consumer {
	self.client = client
	return self
}

func (self *Consumer) WithMonitor(monitor *monitor_settler.Monitor) *Consumer {
	self.monitor = monitor
	return self
}

func (self *Consumer) Run(ctx context.Context) (err error) {
	for {
		var payloads []string
		payloads, err = self.client.LPopCount(ctx, cache.ClickQueue(), self.config.Clicks.BatchSize).Result()
		if err == redis.Nil {
			// Queue is empty
			return nil
		}
		if err != nil {
			self.monitor.Report.Clicks.Errors.ConsumeFailures.Inc()
			return
		}

		err = self.consumeBatch(ctx, payloads)
		if err != nil {
			self.monitor.Report.Clicks.Errors.ConsumeFailures.Inc()
			return
		}

		self.monitor.Report.Clicks.State.BatchesConsumed.Inc()

		if len(payloads) < self.config.Clicks.BatchSize {
			// Queue drained
			return nil
		}
	}
}

func (self *Consumer) consumeBatch(ctx context.Context, payloads []string) (err error) {
	rows, perLink, err := self.buildBatch(ctx, payloads)
	if err != nil {
		return
	}
	if len(rows) == 0 {
		return nil
	}

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		err = tx.Table(model.TableAffiliateClicks).Create(&rows).Error
		if err != nil {
			return
		}

		for linkId, count := range perLink {
			err = tx.Table(model.TableAffiliateLinks).
				Where("id = ?", linkId).
				UpdateColumn("total_clicks", gorm.Expr("total_clicks + ?", count)).
				Error
			if err != nil {
				return
			}
		}
		return
	})
	if err != nil {
		return
	}

	self.monitor.Report.Clicks.State.ClicksSaved.Add(uint64(len(rows)))
	return
}

// buildBatch resolves the raw payloads into click rows plus one
// counter increment per distinct link
func (self *Consumer) buildBatch(ctx context.Context, payloads []string) (rows []model.AffiliateClick, perLink map[int64]int64, err error) {
	rows = make([]model.AffiliateClick, 0, len(payloads))
	perLink = make(map[int64]int64)

	for _, payload := range payloads {
		var click Click
		err = json.Unmarshal([]byte(payload), &click)
		if err != nil {
			self.monitor.Report.Clicks.Errors.MalformedPayloads.Inc()
			self.log.WithError(err).Warn("Dropping malformed click payload")
			err = nil
			continue
		}

		var linkId int64
		linkId, err = self.resolveLink(ctx, click.LinkHash)
		if err != nil {
			return
		}
		if linkId == 0 {
			// Link was deleted or the hash is bogus
			self.monitor.Report.Clicks.State.ClicksDropped.Inc()
			continue
		}

		rows = append(rows, model.AffiliateClick{
			AffiliateLinkId: linkId,
			UserId:          click.UserId,
			CreatedAt:       time.Unix(click.ClickedAt, 0),
		})
		perLink[linkId]++
	}
	return
}

// resolveLink maps a link hash to its id. Zero means unknown link.
// Misses and hits are both memoized so a burst of clicks on one link
// costs a single select.
func (self *Consumer) resolveLink(ctx context.Context, linkHash string) (linkId int64, err error) {
	cached, ok := self.linkMemo.Get(linkHash)
	if ok {
		return cached.(int64), nil
	}

	var link model.AffiliateLink
	err = self.db.WithContext(ctx).
		Table(model.TableAffiliateLinks).
		Where("link_hash = ?", linkHash).
		First(&link).
		Error
	if err == gorm.ErrRecordNotFound {
		self.linkMemo.Set(linkHash, int64(0), gocache.DefaultExpiration)
		return 0, nil
	}
	if err != nil {
		self.monitor.Report.Clicks.Errors.LinkLookupFailures.Inc()
		return
	}

	self.linkMemo.Set(linkHash, link.ID, gocache.DefaultExpiration)
	return link.ID, nil
}
