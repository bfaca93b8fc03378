package settle

import (
	"fmt"

	"github.com/onton-events/settler/src/balances"
	"github.com/onton-events/settler/src/clicks"
	"github.com/onton-events/settler/src/nftdeploy"
	"github.com/onton-events/settler/src/notifier"
	"github.com/onton-events/settler/src/orders"
	"github.com/onton-events/settler/src/rewardsync"
	"github.com/onton-events/settler/src/scheduler"
	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/metadata"
	"github.com/onton-events/settler/src/utils/model"
	"github.com/onton-events/settler/src/utils/monitoring"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/redis"
	"github.com/onton-events/settler/src/utils/society"
	"github.com/onton-events/settler/src/utils/task"
	"github.com/onton-events/settler/src/utils/telegram"
	"github.com/onton-events/settler/src/utils/ton"
	"github.com/onton-events/settler/src/utils/tonproof"
)

// Job families the controller knows how to run
const (
	FamilyClicks      = "clicks"
	FamilyOrders      = "orders"
	FamilyCampaign    = "campaign"
	FamilyCollections = "collections"
	FamilyItems       = "items"
	FamilyNotifier    = "notifier"
	FamilyBalances    = "balances"
	FamilyRewardSync  = "rewardsync"
)

// AllFamilies in scheduling order
var AllFamilies = []string{
	FamilyClicks,
	FamilyOrders,
	FamilyCampaign,
	FamilyCollections,
	FamilyItems,
	FamilyNotifier,
	FamilyBalances,
	FamilyRewardSync,
}

type Controller struct {
	*task.Task
}

// NewController assembles the settler: one shared database and redis
// connection, one monitor and REST server, and a scheduler firing the
// requested job families on their intervals.
func NewController(config *config.Config, families []string) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "settler")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "settler")
	if err != nil {
		return
	}

	// Redis, shared by the job locks and the click queue
	redisClient, err := redis.NewClient(self.Ctx, &config.Redis, "settler")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_settler.NewMonitor().
		WithMaxHistorySize(30)
	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Shared clients
	tonClient := ton.NewClient(&config.Ton)
	societyClient := society.NewClient(&config.Society)
	metadataClient := metadata.NewClient(&config.Metadata)

	// Telegram is optional, jobs fall back to logging only
	var sender *telegram.BotSender
	if config.Telegram.BotToken != "" {
		sender, err = telegram.NewBotSender(&config.Telegram)
		if err != nil {
			self.Log.WithError(err).Error("Failed to create Telegram sender")
			return
		}
	}
	var noticer telegram.Noticer
	if sender != nil {
		noticer = sender
	}

	sched := scheduler.NewScheduler(config).
		WithLockClient(redisClient).
		WithMonitor(monitor)

	for _, family := range families {
		switch family {
		case FamilyClicks:
			consumer := clicks.NewConsumer(config).
				WithDB(db).
				WithClient(redisClient).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.ClicksInterval, consumer.Run)

		case FamilyOrders:
			settler := orders.NewSettler(config).
				WithDB(db).
				WithChain(tonClient).
				WithSociety(societyClient).
				WithNoticer(noticer).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.OrdersInterval, settler.Run)

		case FamilyCampaign:
			campaign := orders.NewCampaignSettler(config).
				WithDB(db).
				WithVerifier(tonproof.NewVerifier(&config.TonProof)).
				WithNoticer(noticer).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.CampaignInterval, campaign.Run)

		case FamilyCollections:
			deployer := nftdeploy.NewCollectionDeployer(config).
				WithDB(db).
				WithChain(tonClient).
				WithMetadata(metadataClient).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.CollectionsInterval, deployer.Run)

		case FamilyItems:
			minter := nftdeploy.NewItemMinter(config).
				WithDB(db).
				WithChain(tonClient).
				WithMetadata(metadataClient).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.ItemsInterval, minter.Run)

		case FamilyNotifier:
			if sender == nil {
				err = fmt.Errorf("notifier requires a Telegram bot token")
				return
			}
			rewardNotifier := notifier.NewNotifier(config).
				WithDB(db).
				WithSender(sender).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.NotifierInterval, rewardNotifier.Run)

		case FamilyBalances:
			reconciler := balances.NewReconciler(config).
				WithDB(db).
				WithProber(tonClient).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.BalancesInterval, reconciler.Run)

		case FamilyRewardSync:
			syncer := rewardsync.NewSyncer(config).
				WithDB(db).
				WithSource(societyClient).
				WithMonitor(monitor)
			sched.WithJob(family, config.Scheduler.RewardSyncInterval, syncer.Run)

		default:
			err = fmt.Errorf("unknown job family: %s", family)
			return
		}
	}

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(sched.Task)
	return
}
