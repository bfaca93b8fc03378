package monitoring

import (
	"github.com/onton-events/settler/src/utils/monitoring/report"
	"github.com/onton-events/settler/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor gathers runtime counters and serves them through the REST
// server
type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
	IsOK() bool
	OnGetState(c *gin.Context)
	OnGetHealth(c *gin.Context)

	GetTask() *task.Task
}
