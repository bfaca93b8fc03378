package orders

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/tonproof"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeCampaignStore struct {
	wallets map[int64]*model.UserWallet

	lastIndex      int
	purchasedSoFar int
	creditErr      error

	credited  []model.CampaignUserSpin
	completed []int64
	failed    []int64
}

func newFakeCampaignStore() *fakeCampaignStore {
	return &fakeCampaignStore{wallets: make(map[int64]*model.UserWallet)}
}

func (f *fakeCampaignStore) PendingOrders(ctx context.Context, limit int) (orders []model.CampaignOrder, err error) {
	return nil, nil
}

func (f *fakeCampaignStore) Wallet(ctx context.Context, userId int64, walletAddress string) (wallet *model.UserWallet, err error) {
	return f.wallets[userId], nil
}

func (f *fakeCampaignStore) CreditAndComplete(ctx context.Context, order *model.CampaignOrder, build SpinBuilder) (spins []model.CampaignUserSpin, err error) {
	if f.creditErr != nil {
		return nil, f.creditErr
	}
	spins = build(f.lastIndex, f.purchasedSoFar)
	f.credited = append(f.credited, spins...)
	f.completed = append(f.completed, order.ID)
	return
}

func (f *fakeCampaignStore) FailOrder(ctx context.Context, order *model.CampaignOrder) (err error) {
	f.failed = append(f.failed, order.ID)
	return nil
}

type fakeProofVerifier struct {
	err error
}

func (f *fakeProofVerifier) VerifyStored(proof *tonproof.Proof) (err error) {
	return f.err
}

type CampaignSettlerTestSuite struct {
	suite.Suite

	ctx     context.Context
	config  *config.Config
	monitor *monitor_settler.Monitor
	store   *fakeCampaignStore
}

func (s *CampaignSettlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.monitor = monitor_settler.NewMonitor().WithMaxHistorySize(10)
	s.store = newFakeCampaignStore()
}

func (s *CampaignSettlerTestSuite) settler(verifier ProofVerifier) *CampaignSettler {
	return NewCampaignSettler(s.config).
		WithStore(s.store).
		WithVerifier(verifier).
		WithMonitor(s.monitor)
}

func (s *CampaignSettlerTestSuite) order(spinCount int) *model.CampaignOrder {
	return &model.CampaignOrder{
		ID:            9,
		Uuid:          uuid.New(),
		UserId:        1,
		WalletAddress: sql.NullString{String: "0:ab", Valid: true},
		SpinCount:     spinCount,
		Status:        model.CampaignOrderStatusProcessing,
	}
}

func (s *CampaignSettlerTestSuite) TestCompletesAndCredits() {
	s.store.wallets[1] = &model.UserWallet{UserId: 1, WalletAddress: "0:ab"}
	s.store.lastIndex = 10
	s.store.purchasedSoFar = 2

	// Purchases 3, 4 and 5; the 5th earns the bonus spin
	s.settler(&fakeProofVerifier{}).settleCampaignOrder(s.ctx, s.order(3))

	s.Equal([]int64{9}, s.store.completed)
	s.Len(s.store.credited, 4)
	s.Equal(uint64(1), s.monitor.Report.Orders.State.CampaignOrdersCompleted.Load())
	s.Equal(uint64(3), s.monitor.Report.Orders.State.SpinsCredited.Load())
	s.Equal(uint64(1), s.monitor.Report.Orders.State.BonusSpinsGranted.Load())
}

func (s *CampaignSettlerTestSuite) TestCreditFailureLeavesOrderUntouched() {
	s.store.wallets[1] = &model.UserWallet{UserId: 1, WalletAddress: "0:ab"}
	s.store.creditErr = errors.New("deadlock")

	s.settler(&fakeProofVerifier{}).settleCampaignOrder(s.ctx, s.order(3))

	s.Empty(s.store.completed)
	s.Empty(s.store.credited)
	s.Empty(s.store.failed)
	s.Zero(s.monitor.Report.Orders.State.CampaignOrdersCompleted.Load())
	s.Zero(s.monitor.Report.Orders.State.SpinsCredited.Load())
	s.Equal(uint64(1), s.monitor.Report.Orders.Errors.CampaignFailures.Load())
}

func (s *CampaignSettlerTestSuite) TestUnverifiedProofFailsOrder() {
	s.store.wallets[1] = &model.UserWallet{UserId: 1, WalletAddress: "0:ab"}

	s.settler(&fakeProofVerifier{err: tonproof.ErrInvalidSignature}).settleCampaignOrder(s.ctx, s.order(3))

	s.Equal([]int64{9}, s.store.failed)
	s.Empty(s.store.completed)
	s.Zero(s.monitor.Report.Orders.State.SpinsCredited.Load())
}

func (s *CampaignSettlerTestSuite) TestMissingWalletFailsOrder() {
	s.settler(&fakeProofVerifier{}).settleCampaignOrder(s.ctx, s.order(3))

	s.Equal([]int64{9}, s.store.failed)
	s.Empty(s.store.completed)
}

func TestCampaignSettlerTestSuite(t *testing.T) {
	suite.Run(t, new(CampaignSettlerTestSuite))
}
