package balances

import (
	"context"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BalanceProber reads a wallet's jetton balance off chain
type BalanceProber interface {
	GetJettonBalance(ctx context.Context, ownerAddress, jettonMasterAddress string) (balance string, jettonWallet string, err error)
}

// candidate is one wallet worth probing, from any of the sources
type candidate struct {
	UserId        int64
	WalletAddress string
	Place         model.PlaceOfConnection
}

// Store is the persistence slice of the reconciler
type Store interface {
	Candidates(ctx context.Context) (candidates []candidate, err error)
	IsFresh(ctx context.Context, wallet *candidate, since time.Time) (fresh bool, err error)
	Upsert(ctx context.Context, row *model.WalletBalance) (err error)
}

// Reconciler keeps wallet_balances in step with the chain. Wallets
// come from three places (campaign orders, paid orders, connected
// wallets); a wallet probed within the freshness window is skipped, a
// probe failure leaves the stored row untouched.
type Reconciler struct {
	config  *config.Config
	store   Store
	prober  BalanceProber
	monitor *monitor_settler.Monitor
	log     *logrus.Entry
	now     func() time.Time
}

func NewReconciler(config *config.Config) (self *Reconciler) {
	self = new(Reconciler)
	self.config = config
	self.log = logger.NewSublogger("balance-reconciler")
	self.now = time.Now
	return
}

func (self *Reconciler) WithDB(db *gorm.DB) *Reconciler {
	self.store = NewGormStore(db)
	return self
}

func (self *Reconciler) WithStore(store Store) *Reconciler {
	self.store = store
	return self
}

func (self *Reconciler) WithProber(prober BalanceProber) *Reconciler {
	self.prober = prober
	return self
}

func (self *Reconciler) WithMonitor(monitor *monitor_settler.Monitor) *Reconciler {
	self.monitor = monitor
	return self
}

func (self *Reconciler) Run(ctx context.Context) (err error) {
	candidates, err := self.store.Candidates(ctx)
	if err != nil {
		return
	}
	candidates = dedupe(candidates)

	for i := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		self.reconcile(ctx, &candidates[i])
	}
	return nil
}

// dedupe collapses repeats of the same (user, wallet, place) triple.
// The same address may show up under several users or places, each
// combination keeps its own balance row.
func dedupe(candidates []candidate) (out []candidate) {
	seen := make(map[candidate]bool)
	for _, row := range candidates {
		if row.WalletAddress == "" {
			continue
		}
		if seen[row] {
			continue
		}
		seen[row] = true
		out = append(out, row)
	}
	return
}

func (self *Reconciler) reconcile(ctx context.Context, wallet *candidate) {
	log := self.log.
		WithField("walletAddress", wallet.WalletAddress).
		WithField("place", wallet.Place)

	fresh, err := self.store.IsFresh(ctx, wallet, self.now().Add(-self.config.Balances.FreshnessWindow))
	if err != nil {
		self.monitor.Report.Balances.Errors.ProbeFailures.Inc()
		log.WithError(err).Error("Failed to check balance freshness")
		return
	}
	if fresh {
		self.monitor.Report.Balances.State.WalletsSkippedFresh.Inc()
		return
	}

	self.monitor.Report.Balances.State.WalletsChecked.Inc()

	balance, jettonWallet, err := self.prober.GetJettonBalance(ctx, wallet.WalletAddress, self.config.Balances.JettonMasterAddress)
	if err != nil {
		// Keep the stored balance, a probe failure is not a zero balance
		self.monitor.Report.Balances.Errors.ProbeFailures.Inc()
		log.WithError(err).Warn("Balance probe failed, keeping stored balance")
		return
	}

	row := model.WalletBalance{
		UserId:              wallet.UserId,
		WalletAddress:       wallet.WalletAddress,
		PlaceOfConnection:   wallet.Place,
		Balance:             balance,
		JettonWalletAddress: jettonWallet,
		LastCheckedAt:       self.now(),
	}

	err = self.store.Upsert(ctx, &row)
	if err != nil {
		self.monitor.Report.Balances.Errors.ProbeFailures.Inc()
		log.WithError(err).Error("Failed to upsert wallet balance")
		return
	}

	self.monitor.Report.Balances.State.BalancesUpdated.Inc()
}
