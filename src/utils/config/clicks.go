package config

import (
	"time"

	"github.com/spf13/viper"
)

type Clicks struct {
	// Max number of queued clicks popped in one run
	BatchSize int

	// How long a resolved linkHash -> link id mapping stays memoized
	LinkMemoTTL time.Duration

	// How often expired memo entries are purged
	LinkMemoCleanupInterval time.Duration
}

func setClicksDefaults() {
	viper.SetDefault("Clicks.BatchSize", "1000")
	viper.SetDefault("Clicks.LinkMemoTTL", "10m")
	viper.SetDefault("Clicks.LinkMemoCleanupInterval", "30m")
}
