package config

import (
	"time"

	"github.com/spf13/viper"
)

type Notifier struct {
	// Delivery attempts per recipient in one run
	MaxAttempts int

	// Fixed pause between delivery attempts
	AttemptDelay time.Duration

	// Pause between recipients
	RecipientDelay time.Duration
}

func setNotifierDefaults() {
	viper.SetDefault("Notifier.MaxAttempts", "10")
	viper.SetDefault("Notifier.AttemptDelay", "200ms")
	viper.SetDefault("Notifier.RecipientDelay", "50ms")
}
