package config

import (
	"github.com/spf13/viper"
)

type NftDeploy struct {
	// Max number of CREATING rows claimed in one run
	BatchSize int

	// Bucket names passed to the metadata storage service
	CollectionBucket string
	ItemBucket       string
}

func setNftDeployDefaults() {
	viper.SetDefault("NftDeploy.BatchSize", "25")
	viper.SetDefault("NftDeploy.CollectionBucket", "ontoncollection")
	viper.SetDefault("NftDeploy.ItemBucket", "ontonitem")
}
