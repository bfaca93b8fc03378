package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/telegram"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier delivers tournament reward messages. Delivery is at most
// once per recipient: the received flag flips only after Telegram
// accepts the message, and recipients whose flag is set are never
// selected again. A recipient that exhausts its attempts is retried
// on the next tick.
type Notifier struct {
	config  *config.Config
	db      *gorm.DB
	sender  telegram.Sender
	monitor *monitor_settler.Monitor
	log     *logrus.Entry
}

func NewNotifier(config *config.Config) (self *Notifier) {
	self = new(Notifier)
	self.config = config
	self.log = logger.NewSublogger("notifier")
	return
}

func (self *Notifier) WithDB(db *gorm.DB) *Notifier {
	self.db = db
	return self
}

func (self *Notifier) WithSender(sender telegram.Sender) *Notifier {
	self.sender = sender
	return self
}

func (self *Notifier) WithMonitor(monitor *monitor_settler.Monitor) *Notifier {
	self.monitor = monitor
	return self
}

func (self *Notifier) Run(ctx context.Context) (err error) {
	recipients, err := self.selectRecipients(ctx)
	if err != nil {
		return
	}

	self.monitor.Report.Notifier.State.RecipientsSelected.Add(uint64(len(recipients)))

	for i := range recipients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		self.notify(ctx, &recipients[i])

		// Spacing between recipients keeps us under the bot API flood limits
		time.Sleep(self.config.Notifier.RecipientDelay)
	}
	return nil
}

func (self *Notifier) selectRecipients(ctx context.Context) (recipients []model.RewardNotification, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableGameLeaderboard).
		Select("game_leaderboard.telegram_user_id, game_leaderboard.tournament_id, tournaments.name AS tournament_name, tournaments.reward_link").
		Joins("JOIN tournaments ON tournaments.id = game_leaderboard.tournament_id").
		Where("game_leaderboard.reward_created = TRUE AND game_leaderboard.notification_received = FALSE").
		Scan(&recipients).Error
	if err != nil {
		self.log.WithError(err).Error("Failed to select notification recipients")
	}
	return
}

func (self *Notifier) notify(ctx context.Context, recipient *model.RewardNotification) {
	log := self.log.
		WithField("telegramUserId", recipient.TelegramUserId).
		WithField("tournamentId", recipient.TournamentId)

	text := fmt.Sprintf("Your reward for <b>%s</b> is ready!\n%s", recipient.TournamentName, recipient.RewardLink)

	err := self.deliver(ctx, recipient.TelegramUserId, text)
	if err != nil {
		self.monitor.Report.Notifier.Errors.RetriesExhausted.Inc()
		log.WithError(err).Warn("Gave up delivering reward notification")
		return
	}

	err = self.markReceived(ctx, recipient)
	if err != nil {
		// Delivered but not recorded, the next tick sends a duplicate
		log.WithError(err).Error("Failed to mark notification as received")
		return
	}

	self.monitor.Report.Notifier.State.NotificationsSent.Inc()
}

// deliver retries the send a bounded number of times with a constant
// gap between attempts
func (self *Notifier) deliver(ctx context.Context, telegramUserId int64, text string) (err error) {
	attempt := func() (err error) {
		err = self.sender.Send(ctx, telegramUserId, text)
		if err != nil {
			self.monitor.Report.Notifier.Errors.DeliveryFailures.Inc()
		}
		return
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(self.config.Notifier.AttemptDelay),
			uint64(self.config.Notifier.MaxAttempts-1)),
		ctx)

	return backoff.Retry(attempt, policy)
}

func (self *Notifier) markReceived(ctx context.Context, recipient *model.RewardNotification) (err error) {
	return self.db.WithContext(ctx).
		Table(model.TableGameLeaderboard).
		Where("telegram_user_id = ? AND tournament_id = ?", recipient.TelegramUserId, recipient.TournamentId).
		Updates(map[string]interface{}{
			"notification_received": true,
			"updated_at":            gorm.Expr("NOW()"),
		}).Error
}
