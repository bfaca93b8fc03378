package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ton struct {
	// Base URL of the tonapi-style gateway
	Url string

	// API key sent as a bearer token, empty disables auth
	ApiKey string

	// Whether the gateway points at testnet
	IsTestnet bool

	// Request timeout
	RequestTimeout time.Duration

	// Requests per second towards the gateway
	Limit float64

	// Burst size allowed by the limiter
	Burst int
}

func setTonDefaults() {
	viper.SetDefault("Ton.Url", "https://tonapi.io/v2")
	viper.SetDefault("Ton.ApiKey", "")
	viper.SetDefault("Ton.IsTestnet", "false")
	viper.SetDefault("Ton.RequestTimeout", "30s")
	viper.SetDefault("Ton.Limit", "4")
	viper.SetDefault("Ton.Burst", "1")
}
