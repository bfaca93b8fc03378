package rewardsync

import (
	"context"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/society"
	"github.com/onton-events/settler/src/utils/task"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RewardSource pages reward claim states from the society platform
type RewardSource interface {
	GetRewards(ctx context.Context, activityId string, offset, limit int) (out *society.RewardsPage, err error)
}

// Syncer mirrors reward claim states from the society platform into
// the local rewards table. Events are fanned out over a bounded worker
// pool, rewards inside one event are paged sequentially.
type Syncer struct {
	config  *config.Config
	db      *gorm.DB
	source  RewardSource
	monitor *monitor_settler.Monitor
	log     *logrus.Entry
}

func NewSyncer(config *config.Config) (self *Syncer) {
	self = new(Syncer)
	self.config = config
	self.log = logger.NewSublogger("reward-syncer")
	return
}

func (self *Syncer) WithDB(db *gorm.DB) *Syncer {
	self.db = db
	return self
}

func (self *Syncer) WithSource(source RewardSource) *Syncer {
	self.source = source
	return self
}

func (self *Syncer) WithMonitor(monitor *monitor_settler.Monitor) *Syncer {
	self.monitor = monitor
	return self
}

func (self *Syncer) Run(ctx context.Context) (err error) {
	offset := 0
	pool := workerpool.New(self.config.RewardSync.MaxConcurrentCalls)
	defer pool.StopWait()

	for {
		var events []model.Event
		err = self.db.WithContext(ctx).
			Table(model.TableEvents).
			Where("activity_id IS NOT NULL AND start_date > ?", time.Now().Add(-self.config.RewardSync.Cutoff).Unix()).
			Order("id ASC").
			Offset(offset).
			Limit(self.config.RewardSync.EventsBatchSize).
			Find(&events).Error
		if err != nil {
			self.monitor.Report.RewardSync.Errors.ApiFailures.Inc()
			return
		}
		if len(events) == 0 {
			return nil
		}

		for i := range events {
			event := events[i]
			pool.Submit(func() {
				self.syncEvent(ctx, &event)
			})
		}

		if len(events) < self.config.RewardSync.EventsBatchSize {
			return nil
		}
		offset += len(events)
	}
}

func (self *Syncer) syncEvent(ctx context.Context, event *model.Event) {
	log := self.log.WithField("eventUuid", event.Uuid)

	offset := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var page *society.RewardsPage
		err := task.NewRetry().
			WithContext(ctx).
			WithMaxElapsedTime(30 * time.Second).
			WithMaxInterval(5 * time.Second).
			Run(func() (err error) {
				page, err = self.source.GetRewards(ctx, event.ActivityId.String, offset, self.config.RewardSync.RewardsBatchSize)
				return
			})
		if err != nil {
			self.monitor.Report.RewardSync.Errors.ApiFailures.Inc()
			log.WithError(err).Warn("Failed to fetch rewards page")
			return
		}

		for _, reward := range page.Items {
			if !reward.Claimed {
				continue
			}

			err = self.markClaimed(ctx, event.Uuid, reward.VisitorId)
			if err != nil {
				self.monitor.Report.RewardSync.Errors.ApiFailures.Inc()
				log.WithError(err).Error("Failed to mark reward as claimed")
				continue
			}
		}

		if len(page.Items) < self.config.RewardSync.RewardsBatchSize {
			break
		}
		offset += len(page.Items)
	}

	self.monitor.Report.RewardSync.State.ActivitiesSynced.Inc()
}

func (self *Syncer) markClaimed(ctx context.Context, eventUuid string, visitorId int64) (err error) {
	result := self.db.WithContext(ctx).
		Table(model.TableRewards).
		Where("event_uuid = ? AND visitor_id = ? AND claimed = FALSE", eventUuid, visitorId).
		Updates(map[string]interface{}{
			"claimed":    true,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		self.monitor.Report.RewardSync.State.RewardsUpdated.Add(uint64(result.RowsAffected))
	}
	return
}
