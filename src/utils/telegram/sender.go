package telegram

import (
	"context"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// Sender delivers messages to Telegram users. Narrow on purpose, jobs
// depend on this instead of the bot client so tests can fake delivery.
type Sender interface {
	Send(ctx context.Context, chatId int64, text string) (err error)
}

// Noticer posts best-effort operational notices
type Noticer interface {
	Notice(ctx context.Context, text string)
}

type BotSender struct {
	bot    *bot.Bot
	config *config.Telegram
	log    *logrus.Entry
}

func NewBotSender(telegramConfig *config.Telegram) (self *BotSender, err error) {
	self = new(BotSender)
	self.config = telegramConfig
	self.log = logger.NewSublogger("telegram")

	self.bot, err = bot.New(telegramConfig.BotToken)
	if err != nil {
		return
	}
	return
}

func (self *BotSender) Send(ctx context.Context, chatId int64, text string) (err error) {
	_, err = self.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatId,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	return
}

// Notice posts to the ops log chat. Failures are logged and swallowed,
// operational notices never fail a settlement.
func (self *BotSender) Notice(ctx context.Context, text string) {
	if self.config.LogChatId == 0 {
		return
	}
	err := self.Send(ctx, self.config.LogChatId, text)
	if err != nil {
		self.log.WithError(err).Warn("Failed to send notice to log chat")
	}
}
