package config

import (
	"time"

	"github.com/spf13/viper"
)

type RewardSync struct {
	// Events fetched per page
	EventsBatchSize int

	// Reward rows fetched per page
	RewardsBatchSize int

	// Max society API calls in flight
	MaxConcurrentCalls int

	// Only events that started after now-Cutoff are synced
	Cutoff time.Duration
}

func setRewardSyncDefaults() {
	viper.SetDefault("RewardSync.EventsBatchSize", "50")
	viper.SetDefault("RewardSync.RewardsBatchSize", "30")
	viper.SetDefault("RewardSync.MaxConcurrentCalls", "10")
	viper.SetDefault("RewardSync.Cutoff", "720h")
}
