package nftdeploy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/ton"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const (
	testRawAddress      = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f92a8"
	testFriendlyAddress = "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg-SqFWg"
)

type fakeStore struct {
	collections map[int64]*model.NftApiCollection
	items       map[int64]*model.NftApiItem
	wallets     map[int64]*model.NftApiMinterWallet
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[int64]*model.NftApiCollection),
		items:       make(map[int64]*model.NftApiItem),
		wallets:     make(map[int64]*model.NftApiMinterWallet),
	}
}

func (f *fakeStore) ClaimCreatingCollections(ctx context.Context, limit int) (collections []model.NftApiCollection, err error) {
	for _, id := range f.collectionIds() {
		if len(collections) == limit {
			break
		}
		if f.collections[id].Status != model.NftStatusCreating {
			continue
		}
		f.collections[id].Status = model.NftStatusMinting
		collections = append(collections, *f.collections[id])
	}
	return
}

func (f *fakeStore) ClaimCreatingItems(ctx context.Context, limit int) (items []model.NftApiItem, err error) {
	for _, id := range f.itemIds() {
		if len(items) == limit {
			break
		}
		if f.items[id].Status != model.NftStatusCreating {
			continue
		}
		f.items[id].Status = model.NftStatusMinting
		items = append(items, *f.items[id])
	}
	return
}

func (f *fakeStore) MinterWallet(ctx context.Context, walletId int64) (wallet *model.NftApiMinterWallet, err error) {
	wallet, ok := f.wallets[walletId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return
}

func (f *fakeStore) CompletedCollection(ctx context.Context, collectionId int64) (collection *model.NftApiCollection, err error) {
	collection, ok := f.collections[collectionId]
	if !ok || collection.Status != model.NftStatusCompleted {
		return nil, gorm.ErrRecordNotFound
	}
	return
}

func (f *fakeStore) CompleteCollection(ctx context.Context, collectionId int64, address, friendlyAddress, metadataUrl string) (err error) {
	collection := f.collections[collectionId]
	collection.Status = model.NftStatusCompleted
	collection.Address = sql.NullString{String: address, Valid: true}
	collection.FriendlyAddress = sql.NullString{String: friendlyAddress, Valid: true}
	collection.MetadataUrl = sql.NullString{String: metadataUrl, Valid: true}
	return nil
}

func (f *fakeStore) CompleteItem(ctx context.Context, itemId, collectionId, index int64, address, friendlyAddress, metadataUrl string) (err error) {
	item := f.items[itemId]
	item.Status = model.NftStatusCompleted
	item.NftIndex = sql.NullInt64{Int64: index, Valid: true}
	item.Address = sql.NullString{String: address, Valid: true}
	item.FriendlyAddress = sql.NullString{String: friendlyAddress, Valid: true}
	item.MetadataUrl = sql.NullString{String: metadataUrl, Valid: true}

	collection := f.collections[collectionId]
	if collection.LastRegisteredIndex < index {
		collection.LastRegisteredIndex = index
	}
	return nil
}

func (f *fakeStore) ParkCollection(ctx context.Context, collectionId int64, status model.NftStatus) (err error) {
	f.collections[collectionId].Status = status
	return nil
}

func (f *fakeStore) ParkItem(ctx context.Context, itemId int64, status model.NftStatus) (err error) {
	f.items[itemId].Status = status
	return nil
}

func (f *fakeStore) collectionIds() (ids []int64) {
	for id := range f.collections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return
}

func (f *fakeStore) itemIds() (ids []int64) {
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return
}

type fakeChain struct {
	deployCalls  int
	mintCalls    int
	failMintCall int
}

func (f *fakeChain) DeployCollection(ctx context.Context, req *ton.DeployCollectionRequest) (out *ton.SendResult, err error) {
	f.deployCalls++
	return &ton.SendResult{Address: testRawAddress, TrxHash: "trx"}, nil
}

func (f *fakeChain) MintItem(ctx context.Context, req *ton.MintItemRequest) (out *ton.SendResult, err error) {
	f.mintCalls++
	if f.failMintCall == f.mintCalls {
		return nil, errors.New("send failed")
	}
	return &ton.SendResult{Address: testRawAddress, TrxHash: "trx"}, nil
}

type fakeUploader struct {
	calls int
}

func (f *fakeUploader) UploadJSON(ctx context.Context, bucket, name string, document interface{}) (url string, err error) {
	f.calls++
	return fmt.Sprintf("https://storage/%s/%s", bucket, name), nil
}

type PipelineTestSuite struct {
	suite.Suite

	ctx      context.Context
	config   *config.Config
	monitor  *monitor_settler.Monitor
	store    *fakeStore
	chain    *fakeChain
	uploader *fakeUploader
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.monitor = monitor_settler.NewMonitor().WithMaxHistorySize(10)
	s.store = newFakeStore()
	s.chain = &fakeChain{}
	s.uploader = &fakeUploader{}
}

func (s *PipelineTestSuite) deployer() *CollectionDeployer {
	return NewCollectionDeployer(s.config).
		WithStore(s.store).
		WithChain(s.chain).
		WithMetadata(s.uploader).
		WithMonitor(s.monitor)
}

func (s *PipelineTestSuite) minter() *ItemMinter {
	return NewItemMinter(s.config).
		WithStore(s.store).
		WithChain(s.chain).
		WithMetadata(s.uploader).
		WithMonitor(s.monitor)
}

func (s *PipelineTestSuite) creatingCollection(id int64) *model.NftApiCollection {
	return &model.NftApiCollection{
		ID:             id,
		Name:           "Golden Tickets",
		Image:          "https://img.example/c.png",
		MinterWalletId: 3,
		Status:         model.NftStatusCreating,
	}
}

func (s *PipelineTestSuite) creatingItem(id, collectionId int64) *model.NftApiItem {
	return &model.NftApiItem{
		ID:                 id,
		CollectionId:       sql.NullInt64{Int64: collectionId, Valid: true},
		Name:               fmt.Sprintf("Ticket #%d", id),
		Image:              "https://img.example/i.png",
		OwnerWalletAddress: sql.NullString{String: testFriendlyAddress, Valid: true},
		Status:             model.NftStatusCreating,
	}
}

func (s *PipelineTestSuite) TestMissingMinterWalletParksFailed() {
	s.store.collections[1] = s.creatingCollection(1)

	s.NoError(s.deployer().Run(s.ctx))

	s.Equal(model.NftStatusFailed, s.store.collections[1].Status)
	s.Equal(uint64(1), s.monitor.Report.NftDeploy.State.RowsParkedFailed.Load())
	s.Zero(s.monitor.Report.NftDeploy.Errors.ValidationFailures.Load())
	s.Zero(s.chain.deployCalls)
}

func (s *PipelineTestSuite) TestEmptyMnemonicParksFailed() {
	s.store.collections[1] = s.creatingCollection(1)
	s.store.wallets[3] = &model.NftApiMinterWallet{ID: 3}

	s.NoError(s.deployer().Run(s.ctx))

	s.Equal(model.NftStatusFailed, s.store.collections[1].Status)
	s.Zero(s.chain.deployCalls)
}

func (s *PipelineTestSuite) TestCompletedCollectionIsNeverRedeployed() {
	s.store.wallets[3] = &model.NftApiMinterWallet{ID: 3, Mnemonic: "word1 word2"}
	s.store.collections[1] = s.creatingCollection(1)

	s.NoError(s.deployer().Run(s.ctx))
	s.Equal(model.NftStatusCompleted, s.store.collections[1].Status)
	s.Equal(1, s.chain.deployCalls)
	address := s.store.collections[1].Address.String

	s.NoError(s.deployer().Run(s.ctx))
	s.Equal(1, s.chain.deployCalls)
	s.Equal(address, s.store.collections[1].Address.String)
	s.Equal(uint64(1), s.monitor.Report.NftDeploy.State.CollectionsDeployed.Load())
}

func (s *PipelineTestSuite) TestFailedMintConsumesNoIndex() {
	s.store.wallets[3] = &model.NftApiMinterWallet{ID: 3, Mnemonic: "word1 word2"}
	collection := s.creatingCollection(1)
	collection.Status = model.NftStatusCompleted
	collection.Address = sql.NullString{String: testRawAddress, Valid: true}
	s.store.collections[1] = collection

	s.store.items[1] = s.creatingItem(1, 1)
	s.store.items[2] = s.creatingItem(2, 1)
	s.store.items[3] = s.creatingItem(3, 1)
	s.chain.failMintCall = 2

	s.NoError(s.minter().Run(s.ctx))

	s.Equal(model.NftStatusCompleted, s.store.items[1].Status)
	s.Equal(int64(1), s.store.items[1].NftIndex.Int64)

	s.Equal(model.NftStatusFailed, s.store.items[2].Status)
	s.False(s.store.items[2].NftIndex.Valid)

	// The failed mint burned no index, the next item takes 2
	s.Equal(model.NftStatusCompleted, s.store.items[3].Status)
	s.Equal(int64(2), s.store.items[3].NftIndex.Int64)
	s.Equal(int64(2), s.store.collections[1].LastRegisteredIndex)
}

func (s *PipelineTestSuite) TestCompletedItemIsNeverReminted() {
	s.store.wallets[3] = &model.NftApiMinterWallet{ID: 3, Mnemonic: "word1 word2"}
	collection := s.creatingCollection(1)
	collection.Status = model.NftStatusCompleted
	collection.Address = sql.NullString{String: testRawAddress, Valid: true}
	s.store.collections[1] = collection
	s.store.items[1] = s.creatingItem(1, 1)

	s.NoError(s.minter().Run(s.ctx))
	s.Equal(1, s.chain.mintCalls)

	s.NoError(s.minter().Run(s.ctx))
	s.Equal(1, s.chain.mintCalls)
	s.Equal(int64(1), s.store.collections[1].LastRegisteredIndex)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
