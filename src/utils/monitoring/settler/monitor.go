package monitor_settler

import (
	"math"
	"net/http"
	"time"

	"github.com/onton-events/settler/src/utils/monitoring/report"
	"github.com/onton-events/settler/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Click throughput
	ClicksSaved *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:        &report.RunReport{},
		Clicks:     &report.ClicksReport{},
		Orders:     &report.OrdersReport{},
		NftDeploy:  &report.NftDeployReport{},
		Notifier:   &report.NotifierReport{},
		Balances:   &report.BalancesReport{},
		RewardSync: &report.RewardSyncReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorClicks)
	return
}

func (self *Monitor) Clear() {
	self.ClicksSaved.Clear()
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetTask() *task.Task {
	return self.Task
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize

	self.ClicksSaved = deque.New[uint64](self.historySize)

	return self
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure click ingestion speed
func (self *Monitor) monitorClicks() (err error) {
	loaded := self.Report.Clicks.State.ClicksSaved.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.ClicksSaved.PushBack(loaded)
	if self.ClicksSaved.Len() > self.historySize {
		self.ClicksSaved.PopFront()
	}
	value := float64(self.ClicksSaved.Back()-self.ClicksSaved.Front()) / float64(self.ClicksSaved.Len())

	self.Report.Clicks.State.AverageClicksSavedPerMinute.Store(round(value))
	return
}

func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}

	// Settler runs long enough, at least one job tick should have fired
	lastTick := self.Report.Run.State.LastTickTimestamp.Load()
	return lastTick > 0 && now-lastTick < 1800
}

func (self *Monitor) OnGetState(c *gin.Context) {
	// Fill data
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
