package monitor_settler

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	StartTimestamp              *prometheus.Desc
	UpForSeconds                *prometheus.Desc
	TicksStarted                *prometheus.Desc
	TicksSkipped                *prometheus.Desc
	BatchesConsumed             *prometheus.Desc
	ClicksSaved                 *prometheus.Desc
	ClicksDropped               *prometheus.Desc
	AverageClicksSavedPerMinute *prometheus.Desc
	OrdersSettled               *prometheus.Desc
	TicketsCreated              *prometheus.Desc
	CampaignOrdersCompleted     *prometheus.Desc
	SpinsCredited               *prometheus.Desc
	CollectionsDeployed         *prometheus.Desc
	ItemsMinted                 *prometheus.Desc
	NotificationsSent           *prometheus.Desc
	WalletsChecked              *prometheus.Desc
	BalancesUpdated             *prometheus.Desc
	ActivitiesSynced            *prometheus.Desc
	RewardsUpdated              *prometheus.Desc

	TicksFailed        *prometheus.Desc `json:""`
	TicksPanicked      *prometheus.Desc `json:""`
	ConsumeFailures    *prometheus.Desc `json:""`
	SettlementFailures *prometheus.Desc `json:""`
	ValidationFailures *prometheus.Desc `json:""`
	MintFailures       *prometheus.Desc `json:""`
	DeliveryFailures   *prometheus.Desc `json:""`
	ProbeFailures      *prometheus.Desc `json:""`
	ApiFailures        *prometheus.Desc `json:""`
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "settler",
	}

	return &Collector{
		StartTimestamp:              prometheus.NewDesc("start_timestamp", "", nil, labels),
		UpForSeconds:                prometheus.NewDesc("up_for_seconds", "", nil, labels),
		TicksStarted:                prometheus.NewDesc("ticks_started", "", nil, labels),
		TicksSkipped:                prometheus.NewDesc("ticks_skipped", "", nil, labels),
		BatchesConsumed:             prometheus.NewDesc("click_batches_consumed", "", nil, labels),
		ClicksSaved:                 prometheus.NewDesc("clicks_saved", "", nil, labels),
		ClicksDropped:               prometheus.NewDesc("clicks_dropped", "", nil, labels),
		AverageClicksSavedPerMinute: prometheus.NewDesc("average_clicks_saved_per_minute", "", nil, labels),
		OrdersSettled:               prometheus.NewDesc("orders_settled", "", nil, labels),
		TicketsCreated:              prometheus.NewDesc("tickets_created", "", nil, labels),
		CampaignOrdersCompleted:     prometheus.NewDesc("campaign_orders_completed", "", nil, labels),
		SpinsCredited:               prometheus.NewDesc("spins_credited", "", nil, labels),
		CollectionsDeployed:         prometheus.NewDesc("collections_deployed", "", nil, labels),
		ItemsMinted:                 prometheus.NewDesc("items_minted", "", nil, labels),
		NotificationsSent:           prometheus.NewDesc("notifications_sent", "", nil, labels),
		WalletsChecked:              prometheus.NewDesc("wallets_checked", "", nil, labels),
		BalancesUpdated:             prometheus.NewDesc("balances_updated", "", nil, labels),
		ActivitiesSynced:            prometheus.NewDesc("activities_synced", "", nil, labels),
		RewardsUpdated:              prometheus.NewDesc("rewards_updated", "", nil, labels),

		// Errors
		TicksFailed:        prometheus.NewDesc("error_ticks_failed", "", nil, labels),
		TicksPanicked:      prometheus.NewDesc("error_ticks_panicked", "", nil, labels),
		ConsumeFailures:    prometheus.NewDesc("error_click_consume", "", nil, labels),
		SettlementFailures: prometheus.NewDesc("error_order_settlement", "", nil, labels),
		ValidationFailures: prometheus.NewDesc("error_nft_validation", "", nil, labels),
		MintFailures:       prometheus.NewDesc("error_nft_mint", "", nil, labels),
		DeliveryFailures:   prometheus.NewDesc("error_notification_delivery", "", nil, labels),
		ProbeFailures:      prometheus.NewDesc("error_balance_probe", "", nil, labels),
		ApiFailures:        prometheus.NewDesc("error_reward_sync_api", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.StartTimestamp
	ch <- self.UpForSeconds
	ch <- self.TicksStarted
	ch <- self.TicksSkipped
	ch <- self.BatchesConsumed
	ch <- self.ClicksSaved
	ch <- self.ClicksDropped
	ch <- self.AverageClicksSavedPerMinute
	ch <- self.OrdersSettled
	ch <- self.TicketsCreated
	ch <- self.CampaignOrdersCompleted
	ch <- self.SpinsCredited
	ch <- self.CollectionsDeployed
	ch <- self.ItemsMinted
	ch <- self.NotificationsSent
	ch <- self.WalletsChecked
	ch <- self.BalancesUpdated
	ch <- self.ActivitiesSynced
	ch <- self.RewardsUpdated

	// Errors
	ch <- self.TicksFailed
	ch <- self.TicksPanicked
	ch <- self.ConsumeFailures
	ch <- self.SettlementFailures
	ch <- self.ValidationFailures
	ch <- self.MintFailures
	ch <- self.DeliveryFailures
	ch <- self.ProbeFailures
	ch <- self.ApiFailures
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.StartTimestamp, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.StartTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicksStarted, prometheus.CounterValue, float64(self.monitor.Report.Run.State.TicksStarted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicksSkipped, prometheus.CounterValue, float64(self.monitor.Report.Run.State.TicksSkipped.Load()))
	ch <- prometheus.MustNewConstMetric(self.BatchesConsumed, prometheus.CounterValue, float64(self.monitor.Report.Clicks.State.BatchesConsumed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClicksSaved, prometheus.CounterValue, float64(self.monitor.Report.Clicks.State.ClicksSaved.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClicksDropped, prometheus.CounterValue, float64(self.monitor.Report.Clicks.State.ClicksDropped.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageClicksSavedPerMinute, prometheus.GaugeValue, self.monitor.Report.Clicks.State.AverageClicksSavedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.OrdersSettled, prometheus.CounterValue, float64(self.monitor.Report.Orders.State.OrdersSettled.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicketsCreated, prometheus.CounterValue, float64(self.monitor.Report.Orders.State.TicketsCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.CampaignOrdersCompleted, prometheus.CounterValue, float64(self.monitor.Report.Orders.State.CampaignOrdersCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.SpinsCredited, prometheus.CounterValue, float64(self.monitor.Report.Orders.State.SpinsCredited.Load()))
	ch <- prometheus.MustNewConstMetric(self.CollectionsDeployed, prometheus.CounterValue, float64(self.monitor.Report.NftDeploy.State.CollectionsDeployed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ItemsMinted, prometheus.CounterValue, float64(self.monitor.Report.NftDeploy.State.ItemsMinted.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotificationsSent, prometheus.CounterValue, float64(self.monitor.Report.Notifier.State.NotificationsSent.Load()))
	ch <- prometheus.MustNewConstMetric(self.WalletsChecked, prometheus.CounterValue, float64(self.monitor.Report.Balances.State.WalletsChecked.Load()))
	ch <- prometheus.MustNewConstMetric(self.BalancesUpdated, prometheus.CounterValue, float64(self.monitor.Report.Balances.State.BalancesUpdated.Load()))
	ch <- prometheus.MustNewConstMetric(self.ActivitiesSynced, prometheus.CounterValue, float64(self.monitor.Report.RewardSync.State.ActivitiesSynced.Load()))
	ch <- prometheus.MustNewConstMetric(self.RewardsUpdated, prometheus.CounterValue, float64(self.monitor.Report.RewardSync.State.RewardsUpdated.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.TicksFailed, prometheus.CounterValue, float64(self.monitor.Report.Run.Errors.TicksFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicksPanicked, prometheus.CounterValue, float64(self.monitor.Report.Run.Errors.TicksPanicked.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConsumeFailures, prometheus.CounterValue, float64(self.monitor.Report.Clicks.Errors.ConsumeFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SettlementFailures, prometheus.CounterValue, float64(self.monitor.Report.Orders.Errors.SettlementFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ValidationFailures, prometheus.CounterValue, float64(self.monitor.Report.NftDeploy.Errors.ValidationFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.MintFailures, prometheus.CounterValue, float64(self.monitor.Report.NftDeploy.Errors.MintFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DeliveryFailures, prometheus.CounterValue, float64(self.monitor.Report.Notifier.Errors.DeliveryFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ProbeFailures, prometheus.CounterValue, float64(self.monitor.Report.Balances.Errors.ProbeFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiFailures, prometheus.CounterValue, float64(self.monitor.Report.RewardSync.Errors.ApiFailures.Load()))
}
