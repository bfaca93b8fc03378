package config

import (
	"github.com/spf13/viper"
)

type Orders struct {
	// Number of ticket orders settled in one run
	BatchSize int

	// Number of campaign orders credited in one run
	CampaignBatchSize int

	// Purchases needed for a rewarded spin
	SpinRewardEvery int

	// Purchases needed for a golden collection spin
	GoldenRewardEvery int

	// Collection credited for golden rewards
	GoldenCollectionId int
}

func setOrdersDefaults() {
	viper.SetDefault("Orders.BatchSize", "50")
	viper.SetDefault("Orders.CampaignBatchSize", "50")
	viper.SetDefault("Orders.SpinRewardEvery", "5")
	viper.SetDefault("Orders.GoldenRewardEvery", "20")
	viper.SetDefault("Orders.GoldenCollectionId", "1")
}
