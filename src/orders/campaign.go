package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/telegram"
	"github.com/onton-events/settler/src/utils/tonproof"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SpinBuilder lays out the spin rows for one order given the user's
// current sequence position. Called inside the credit transaction so
// the position it sees cannot go stale before the insert.
type SpinBuilder func(lastIndex, purchasedSoFar int) []model.CampaignUserSpin

// CampaignStore is the persistence slice of the campaign settlement
// job. CreditAndComplete must apply the spins and the order completion
// atomically.
type CampaignStore interface {
	PendingOrders(ctx context.Context, limit int) (orders []model.CampaignOrder, err error)
	Wallet(ctx context.Context, userId int64, walletAddress string) (wallet *model.UserWallet, err error)
	CreditAndComplete(ctx context.Context, order *model.CampaignOrder, build SpinBuilder) (spins []model.CampaignUserSpin, err error)
	FailOrder(ctx context.Context, order *model.CampaignOrder) (err error)
}

// ProofVerifier re-checks a wallet's recorded ton-proof
type ProofVerifier interface {
	VerifyStored(proof *tonproof.Proof) (err error)
}

// CampaignSettler completes processing campaign orders by crediting
// the purchased spins. Milestone purchases earn extra spins: every
// Nth purchased spin a bonus spin, every Mth a guaranteed reward from
// the golden collection. The credit and the order completion commit
// in one transaction.
type CampaignSettler struct {
	config   *config.Config
	store    CampaignStore
	verifier ProofVerifier
	noticer  telegram.Noticer
	monitor  *monitor_settler.Monitor
	log      *logrus.Entry
}

func NewCampaignSettler(config *config.Config) (self *CampaignSettler) {
	self = new(CampaignSettler)
	self.config = config
	self.log = logger.NewSublogger("campaign-settler")
	return
}

func (self *CampaignSettler) WithDB(db *gorm.DB) *CampaignSettler {
	self.store = NewCampaignGormStore(db)
	return self
}

func (self *CampaignSettler) WithStore(store CampaignStore) *CampaignSettler {
	self.store = store
	return self
}

func (self *CampaignSettler) WithVerifier(verifier ProofVerifier) *CampaignSettler {
	self.verifier = verifier
	return self
}

func (self *CampaignSettler) WithNoticer(noticer telegram.Noticer) *CampaignSettler {
	self.noticer = noticer
	return self
}

func (self *CampaignSettler) WithMonitor(monitor *monitor_settler.Monitor) *CampaignSettler {
	self.monitor = monitor
	return self
}

func (self *CampaignSettler) Run(ctx context.Context) (err error) {
	for {
		var orders []model.CampaignOrder
		orders, err = self.store.PendingOrders(ctx, self.config.Orders.CampaignBatchSize)
		if err != nil {
			self.monitor.Report.Orders.Errors.CampaignFailures.Inc()
			return
		}
		if len(orders) == 0 {
			return nil
		}

		for i := range orders {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			self.settleCampaignOrder(ctx, &orders[i])
		}

		if len(orders) < self.config.Orders.CampaignBatchSize {
			return nil
		}
	}
}

func (self *CampaignSettler) settleCampaignOrder(ctx context.Context, order *model.CampaignOrder) {
	log := self.log.WithField("orderUuid", order.Uuid.String())

	// Spins only go to wallets the user proved ownership of
	verified, err := self.isWalletVerified(ctx, order)
	if err != nil {
		self.monitor.Report.Orders.Errors.CampaignFailures.Inc()
		log.WithError(err).Error("Failed to check wallet proof")
		return
	}
	if !verified {
		self.failOrder(ctx, order)
		self.monitor.Report.Orders.Errors.CampaignFailures.Inc()
		log.Warn("Campaign order wallet has no valid proof, failing order")
		return
	}

	spins, err := self.store.CreditAndComplete(ctx, order, func(lastIndex, purchasedSoFar int) []model.CampaignUserSpin {
		return BuildSpins(order, lastIndex, purchasedSoFar,
			self.config.Orders.SpinRewardEvery,
			self.config.Orders.GoldenRewardEvery,
			int64(self.config.Orders.GoldenCollectionId))
	})
	if err != nil {
		self.monitor.Report.Orders.Errors.CampaignFailures.Inc()
		log.WithError(err).Error("Failed to credit campaign spins")
		return
	}

	var credited, bonus int
	for _, spin := range spins {
		if spin.SpinType == model.SpinTypePurchased {
			credited++
		} else {
			bonus++
		}
	}

	self.monitor.Report.Orders.State.CampaignOrdersCompleted.Inc()
	self.monitor.Report.Orders.State.SpinsCredited.Add(uint64(credited))
	self.monitor.Report.Orders.State.BonusSpinsGranted.Add(uint64(bonus))

	if self.noticer != nil {
		self.noticer.Notice(ctx, fmt.Sprintf("Campaign order <code>%s</code> completed, %d spins credited", order.Uuid.String(), credited+bonus))
	}
}

// isWalletVerified requires a connected wallet whose recorded
// ton-proof still checks out
func (self *CampaignSettler) isWalletVerified(ctx context.Context, order *model.CampaignOrder) (verified bool, err error) {
	if !order.WalletAddress.Valid || order.WalletAddress.String == "" {
		return false, nil
	}

	wallet, err := self.store.Wallet(ctx, order.UserId, order.WalletAddress.String)
	if err != nil {
		return
	}
	if wallet == nil {
		return false, nil
	}

	err = self.verifier.VerifyStored(&tonproof.Proof{
		Address:   wallet.WalletAddress,
		Domain:    wallet.ProofDomain,
		Timestamp: wallet.ProofTimestamp,
		Payload:   wallet.ProofPayload,
		Signature: wallet.ProofSignature,
		PublicKey: wallet.ProofPublicKey,
	})
	if err != nil {
		self.log.WithError(err).
			WithField("walletAddress", wallet.WalletAddress).
			Warn("Stored wallet proof no longer verifies")
		return false, nil
	}
	return true, nil
}

func (self *CampaignSettler) failOrder(ctx context.Context, order *model.CampaignOrder) {
	err := self.store.FailOrder(ctx, order)
	if err != nil {
		self.log.WithError(err).WithField("orderUuid", order.Uuid.String()).Error("Failed to fail campaign order")
	}
}

// BuildSpins lays out the spin rows one campaign order earns. Indexes
// continue the user's sequence; milestone purchases append the bonus
// rows right after the purchased spin that triggered them.
func BuildSpins(order *model.CampaignOrder, lastIndex, purchasedSoFar, spinRewardEvery, goldenRewardEvery int, goldenCollectionId int64) (spins []model.CampaignUserSpin) {
	index := lastIndex
	purchased := purchasedSoFar

	for i := 0; i < order.SpinCount; i++ {
		index++
		purchased++
		spins = append(spins, model.CampaignUserSpin{
			UserId:        order.UserId,
			SpinType:      model.SpinTypePurchased,
			SpinPackageId: order.ID,
			SpinIndex:     index,
		})

		// The golden milestone takes precedence, a purchase landing on
		// both earns the golden reward only
		switch {
		case goldenRewardEvery > 0 && purchased%goldenRewardEvery == 0:
			index++
			spins = append(spins, model.CampaignUserSpin{
				UserId:          order.UserId,
				SpinType:        model.SpinTypeSpecificReward,
				SpinPackageId:   order.ID,
				SpinIndex:       index,
				NftCollectionId: sql.NullInt64{Int64: goldenCollectionId, Valid: true},
			})
		case spinRewardEvery > 0 && purchased%spinRewardEvery == 0:
			index++
			spins = append(spins, model.CampaignUserSpin{
				UserId:        order.UserId,
				SpinType:      model.SpinTypeRewardedSpin,
				SpinPackageId: order.ID,
				SpinIndex:     index,
			})
		}
	}
	return
}
