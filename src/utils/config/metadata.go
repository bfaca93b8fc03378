package config

import (
	"time"

	"github.com/spf13/viper"
)

type Metadata struct {
	// Base URL of the metadata storage service
	Url string

	// Access credentials
	AccessKey string
	SecretKey string

	// Request timeout
	RequestTimeout time.Duration
}

func setMetadataDefaults() {
	viper.SetDefault("Metadata.Url", "http://127.0.0.1:9000")
	viper.SetDefault("Metadata.AccessKey", "")
	viper.SetDefault("Metadata.SecretKey", "")
	viper.SetDefault("Metadata.RequestTimeout", "30s")
}
