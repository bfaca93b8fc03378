package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/lock"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/task"

	"github.com/robfig/cron"
	"github.com/rs/xid"
)

// JobFunc is one settlement job tick. It gets a fresh context bound to
// the scheduler lifecycle and must return instead of looping forever.
type JobFunc func(ctx context.Context) error

// Scheduler fires settlement jobs on their intervals. Every tick is
// gated on a redis lease, so many settler instances can run the same
// binary and each tick still executes once.
type Scheduler struct {
	*task.Task

	config  *config.Config
	client  lock.Client
	monitor *monitor_settler.Monitor

	cron *cron.Cron
}

func NewScheduler(config *config.Config) (self *Scheduler) {
	self = new(Scheduler)
	self.config = config
	self.cron = cron.New()

	self.Task = task.NewTask(config, "scheduler").
		WithOnBeforeStart(self.clearStaleLocks).
		WithSubtaskFunc(self.run).
		WithOnStop(self.cron.Stop)

	return
}

func (self *Scheduler) WithLockClient(client lock.Client) *Scheduler {
	self.client = client
	return self
}

func (self *Scheduler) WithMonitor(monitor *monitor_settler.Monitor) *Scheduler {
	self.monitor = monitor
	return self
}

// WithJob registers one job. Ticks fire on the interval regardless of
// how long the previous one took; the lease makes an overlapping tick
// a no-op.
func (self *Scheduler) WithJob(name string, interval time.Duration, job JobFunc) *Scheduler {
	jobLock := lock.New(self.client, self.Log, name, self.config.Scheduler.LockLease)

	err := self.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		self.tick(name, jobLock, job)
	})
	if err != nil {
		// Interval comes from config defaults, a bad one is a programming error
		panic(err)
	}

	return self
}

// A crashed instance leaves its leases behind. Nothing else may run
// those jobs until the leases expire, so boot wipes them all.
func (self *Scheduler) clearStaleLocks() (err error) {
	_, err = lock.ForceClearAll(self.Ctx, self.client, self.Log)
	return
}

// keepLeaseAlive extends the lease while a run is in flight. A batch
// that outlives the initial lease must not lose the lock mid-run, a
// concurrent tick would start the same job over.
func (self *Scheduler) keepLeaseAlive(jobLock *lock.Lock) (stop func()) {
	done := make(chan struct{})
	ticker := time.NewTicker(self.config.Scheduler.LockLease / 3)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := jobLock.Refresh(self.Ctx)
				if err != nil {
					self.Log.WithError(err).Warn("Failed to refresh job lock")
				}
			}
		}
	}()

	return func() { close(done) }
}

func (self *Scheduler) run() (err error) {
	self.cron.Start()

	<-self.Ctx.Done()
	return nil
}

func (self *Scheduler) tick(name string, jobLock *lock.Lock, job JobFunc) {
	runId := xid.New().String()
	log := self.Log.WithField("job", name).WithField("runId", runId)

	acquired, err := jobLock.TryAcquire(self.Ctx, runId)
	if err != nil {
		self.monitor.Report.Run.Errors.LockAcquireError.Inc()
		log.WithError(err).Error("Failed to acquire job lock")
		return
	}
	if !acquired {
		self.monitor.Report.Run.State.TicksSkipped.Inc()
		log.Debug("Job lock held elsewhere, skipping tick")
		return
	}

	defer func() {
		// Scheduler context may already be cancelled during shutdown,
		// the lease still has to go
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		releaseErr := jobLock.Release(releaseCtx)
		if releaseErr != nil {
			log.WithError(releaseErr).Warn("Failed to release job lock")
		}
	}()

	stopRefresh := self.keepLeaseAlive(jobLock)
	defer stopRefresh()

	defer func() {
		p := recover()
		if p != nil {
			self.monitor.Report.Run.Errors.TicksPanicked.Inc()
			log.WithField("panic", p).Error("Job tick panicked")
		}
	}()

	self.monitor.Report.Run.State.TicksStarted.Inc()
	self.monitor.Report.Run.State.LastTickTimestamp.Store(time.Now().Unix())

	log.Debug("Job tick started")
	started := time.Now()

	err = job(self.Ctx)
	if err != nil {
		self.monitor.Report.Run.Errors.TicksFailed.Inc()
		log.WithError(err).Error("Job tick failed")
		return
	}

	log.WithField("duration", time.Since(started).String()).Debug("Job tick finished")
}
