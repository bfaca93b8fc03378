package config

import (
	"time"

	"github.com/spf13/viper"
)

type Scheduler struct {
	// How long a job's lock lease lasts before it expires on its own
	LockLease time.Duration

	// Job intervals
	ClicksInterval      time.Duration
	OrdersInterval      time.Duration
	CampaignInterval    time.Duration
	CollectionsInterval time.Duration
	ItemsInterval       time.Duration
	NotifierInterval    time.Duration
	BalancesInterval    time.Duration
	RewardSyncInterval  time.Duration
}

func setSchedulerDefaults() {
	viper.SetDefault("Scheduler.LockLease", "10m")
	viper.SetDefault("Scheduler.ClicksInterval", "1m")
	viper.SetDefault("Scheduler.OrdersInterval", "1m")
	viper.SetDefault("Scheduler.CampaignInterval", "1m")
	viper.SetDefault("Scheduler.CollectionsInterval", "1m")
	viper.SetDefault("Scheduler.ItemsInterval", "1m")
	viper.SetDefault("Scheduler.NotifierInterval", "5m")
	viper.SetDefault("Scheduler.BalancesInterval", "10m")
	viper.SetDefault("Scheduler.RewardSyncInterval", "30m")
}
