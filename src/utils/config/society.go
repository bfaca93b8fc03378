package config

import (
	"time"

	"github.com/spf13/viper"
)

type Society struct {
	// Base URL of the society rewards API
	Url string

	// Token sent in the Authorization header
	ApiToken string

	// Request timeout
	RequestTimeout time.Duration
}

func setSocietyDefaults() {
	viper.SetDefault("Society.Url", "https://society.ton.org/v1")
	viper.SetDefault("Society.ApiToken", "")
	viper.SetDefault("Society.RequestTimeout", "30s")
}
