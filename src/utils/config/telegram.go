package config

import (
	"github.com/spf13/viper"
)

type Telegram struct {
	// Bot token used for reward notifications
	BotToken string

	// Chat id for operational log notices, 0 disables them
	LogChatId int64
}

func setTelegramDefaults() {
	viper.SetDefault("Telegram.BotToken", "")
	viper.SetDefault("Telegram.LogChatId", "0")
}
