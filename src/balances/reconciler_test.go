package balances

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"

	"github.com/stretchr/testify/suite"
)

type fakeBalanceStore struct {
	candidates []candidate
	rows       map[candidate]model.WalletBalance
}

func newFakeBalanceStore() *fakeBalanceStore {
	return &fakeBalanceStore{rows: make(map[candidate]model.WalletBalance)}
}

func (f *fakeBalanceStore) Candidates(ctx context.Context) (candidates []candidate, err error) {
	return f.candidates, nil
}

func (f *fakeBalanceStore) IsFresh(ctx context.Context, wallet *candidate, since time.Time) (fresh bool, err error) {
	row, ok := f.rows[*wallet]
	return ok && row.LastCheckedAt.After(since), nil
}

func (f *fakeBalanceStore) Upsert(ctx context.Context, row *model.WalletBalance) (err error) {
	key := candidate{UserId: row.UserId, WalletAddress: row.WalletAddress, Place: row.PlaceOfConnection}
	f.rows[key] = *row
	return nil
}

type fakeProber struct {
	calls int
	err   error
}

func (f *fakeProber) GetJettonBalance(ctx context.Context, ownerAddress, jettonMasterAddress string) (balance string, jettonWallet string, err error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "42", "0:jetton", nil
}

type ReconcilerTestSuite struct {
	suite.Suite

	ctx     context.Context
	config  *config.Config
	monitor *monitor_settler.Monitor
	store   *fakeBalanceStore
	prober  *fakeProber
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.monitor = monitor_settler.NewMonitor().WithMaxHistorySize(10)
	s.store = newFakeBalanceStore()
	s.prober = &fakeProber{}
}

func (s *ReconcilerTestSuite) reconciler() *Reconciler {
	return NewReconciler(s.config).
		WithStore(s.store).
		WithProber(s.prober).
		WithMonitor(s.monitor)
}

func (s *ReconcilerTestSuite) TestDedupeKeysOnUserWalletAndPlace() {
	out := dedupe([]candidate{
		{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect},
		{UserId: 2, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect},
		{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect},
		{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionCampaign},
		{UserId: 3, WalletAddress: "", Place: model.PlaceOfConnectionConnect},
	})

	// Two users sharing one wallet stay separate candidates
	s.Len(out, 3)
}

func (s *ReconcilerTestSuite) TestSharedWalletProbedPerUser() {
	s.store.candidates = []candidate{
		{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect},
		{UserId: 2, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect},
	}

	s.NoError(s.reconciler().Run(s.ctx))

	s.Equal(2, s.prober.calls)
	s.Equal(uint64(2), s.monitor.Report.Balances.State.BalancesUpdated.Load())
	s.Len(s.store.rows, 2)
}

func (s *ReconcilerTestSuite) TestFreshWalletProbedOnce() {
	reconciler := s.reconciler()
	wallet := candidate{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect}

	reconciler.reconcile(s.ctx, &wallet)
	reconciler.reconcile(s.ctx, &wallet)

	s.Equal(1, s.prober.calls)
	s.Equal(uint64(1), s.monitor.Report.Balances.State.BalancesUpdated.Load())
	s.Equal(uint64(1), s.monitor.Report.Balances.State.WalletsSkippedFresh.Load())
}

func (s *ReconcilerTestSuite) TestProbeFailureKeepsStoredRow() {
	wallet := candidate{UserId: 1, WalletAddress: "0:ab", Place: model.PlaceOfConnectionConnect}
	stale := model.WalletBalance{
		UserId:            1,
		WalletAddress:     "0:ab",
		PlaceOfConnection: model.PlaceOfConnectionConnect,
		Balance:           "7",
		LastCheckedAt:     time.Now().Add(-30 * 24 * time.Hour),
	}
	s.store.rows[wallet] = stale
	s.prober.err = errors.New("timeout")

	s.reconciler().reconcile(s.ctx, &wallet)

	s.Equal(stale.Balance, s.store.rows[wallet].Balance)
	s.Equal(uint64(1), s.monitor.Report.Balances.Errors.ProbeFailures.Load())
	s.Zero(s.monitor.Report.Balances.State.BalancesUpdated.Load())
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}
