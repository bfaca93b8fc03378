package config

import (
	"time"

	"github.com/spf13/viper"
)

type TonProof struct {
	// Domains a proof may be issued for
	AllowedDomains []string

	// Max age of a proof before it is rejected
	ValidFor time.Duration
}

func setTonProofDefaults() {
	viper.SetDefault("TonProof.AllowedDomains", "onton.live,stage.onton.live")
	viper.SetDefault("TonProof.ValidFor", "15m")
}
