package config

import (
	"time"

	"github.com/spf13/viper"
)

type Balances struct {
	// Records younger than this are not re-probed
	FreshnessWindow time.Duration

	// Jetton master whose balances are probed
	JettonMasterAddress string
}

func setBalancesDefaults() {
	viper.SetDefault("Balances.FreshnessWindow", "168h")
	viper.SetDefault("Balances.JettonMasterAddress", "")
}
