package nftdeploy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/ton"

	"github.com/jackc/pgtype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ItemMinter mints NFT items under completed collections. Every mint
// takes the next index after the collection's last registered one;
// the index advances in the same transaction that completes the item,
// so a crashed run never burns an index.
type ItemMinter struct {
	config   *config.Config
	store    Store
	chain    ChainClient
	metadata MetadataUploader
	monitor  *monitor_settler.Monitor
	log      *logrus.Entry
}

func NewItemMinter(config *config.Config) (self *ItemMinter) {
	self = new(ItemMinter)
	self.config = config
	self.log = logger.NewSublogger("item-minter")
	return
}

func (self *ItemMinter) WithDB(db *gorm.DB) *ItemMinter {
	self.store = NewGormStore(db)
	return self
}

func (self *ItemMinter) WithStore(store Store) *ItemMinter {
	self.store = store
	return self
}

func (self *ItemMinter) WithChain(chain ChainClient) *ItemMinter {
	self.chain = chain
	return self
}

func (self *ItemMinter) WithMetadata(metadata MetadataUploader) *ItemMinter {
	self.metadata = metadata
	return self
}

func (self *ItemMinter) WithMonitor(monitor *monitor_settler.Monitor) *ItemMinter {
	self.monitor = monitor
	return self
}

func (self *ItemMinter) Run(ctx context.Context) (err error) {
	items, err := self.store.ClaimCreatingItems(ctx, self.config.NftDeploy.BatchSize)
	if err != nil {
		self.monitor.Report.NftDeploy.Errors.MintFailures.Inc()
		self.log.WithError(err).Error("Failed to claim items")
		return
	}

	for i := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		self.mintItem(ctx, &items[i])
	}
	return nil
}

func (self *ItemMinter) mintItem(ctx context.Context, item *model.NftApiItem) {
	log := self.log.WithField("itemId", item.ID)

	err := validateItem(item)
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusValidationFailed)
		self.monitor.Report.NftDeploy.Errors.ValidationFailures.Inc()
		log.WithError(err).Warn("Item failed validation, parking")
		return
	}

	collection, err := self.store.CompletedCollection(ctx, item.CollectionId.Int64)
	if err == nil && !collection.Address.Valid {
		err = fmt.Errorf("collection %d has no address", collection.ID)
	}
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusValidationFailed)
		self.monitor.Report.NftDeploy.Errors.ValidationFailures.Inc()
		log.WithError(err).Warn("Item has no deployed collection, parking")
		return
	}

	wallet, err := self.store.MinterWallet(ctx, collection.MinterWalletId)
	if err == nil && wallet.Mnemonic == "" {
		err = fmt.Errorf("minter wallet %d has no mnemonic", collection.MinterWalletId)
	}
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.MintFailures.Inc()
		log.WithError(err).Error("Item collection has no usable minter wallet, parking")
		return
	}

	metadataUrl, err := self.metadata.UploadJSON(ctx,
		self.config.NftDeploy.ItemBucket,
		fmt.Sprintf("item-%d.json", item.ID),
		itemMetadata(item))
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.MetadataUploadFailures.Inc()
		log.WithError(err).Error("Failed to upload item metadata, parking")
		return
	}

	// Next free index under this collection
	index := collection.LastRegisteredIndex + 1

	minted, err := self.chain.MintItem(ctx, &ton.MintItemRequest{
		MinterMnemonic:    wallet.Mnemonic,
		CollectionAddress: collection.Address.String,
		Index:             index,
		OwnerAddress:      item.OwnerWalletAddress.String,
		MetadataUrl:       metadataUrl,
	})
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.MintFailures.Inc()
		log.WithError(err).Error("Item mint failed, parking")
		return
	}

	friendly, err := ton.FriendlyAddress(minted.Address, self.config.Ton.IsTestnet)
	if err != nil {
		self.parkItem(ctx, item, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.MintFailures.Inc()
		log.WithError(err).Error("Mint returned an unparseable address, parking")
		return
	}

	err = self.store.CompleteItem(ctx, item.ID, collection.ID, index, minted.Address, friendly, metadataUrl)
	if err != nil {
		self.monitor.Report.NftDeploy.Errors.MintFailures.Inc()
		log.WithError(err).Error("Failed to complete item")
		return
	}

	self.monitor.Report.NftDeploy.State.ItemsMinted.Inc()
	log.WithField("index", index).WithField("address", friendly).Info("Item minted")
}

func (self *ItemMinter) parkItem(ctx context.Context, item *model.NftApiItem, status model.NftStatus) {
	err := self.store.ParkItem(ctx, item.ID, status)
	if err != nil {
		self.log.WithError(err).
			WithField("itemId", item.ID).
			WithField("status", status).
			Error("Failed to park item")
	}
	if status == model.NftStatusFailed {
		self.monitor.Report.NftDeploy.State.RowsParkedFailed.Inc()
	}
}

func validateItem(item *model.NftApiItem) (err error) {
	if item.Name == "" {
		return fmt.Errorf("item %d has no name", item.ID)
	}
	if item.Image == "" {
		return fmt.Errorf("item %d has no image", item.ID)
	}
	if !item.CollectionId.Valid {
		return fmt.Errorf("item %d has no collection", item.ID)
	}
	if !item.OwnerWalletAddress.Valid || !ton.IsValidAddress(item.OwnerWalletAddress.String) {
		return fmt.Errorf("item %d has no valid owner address", item.ID)
	}
	return nil
}

func itemMetadata(item *model.NftApiItem) map[string]interface{} {
	document := map[string]interface{}{
		"name":        item.Name,
		"description": item.Description,
		"image":       item.Image,
	}
	if item.ContentUrl.Valid {
		document["content_url"] = item.ContentUrl.String
	}
	if item.ContentType.Valid {
		document["content_type"] = item.ContentType.String
	}
	if item.Attributes.Status == pgtype.Present {
		document["attributes"] = json.RawMessage(item.Attributes.Bytes)
	}
	if item.Buttons.Status == pgtype.Present {
		document["buttons"] = json.RawMessage(item.Buttons.Bytes)
	}
	return document
}
