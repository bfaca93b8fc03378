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

// MetadataUploader stores an NFT metadata document and returns its
// durable URL
type MetadataUploader interface {
	UploadJSON(ctx context.Context, bucket, name string, document interface{}) (url string, err error)
}

// ChainClient sends the on-chain messages of the deploy pipeline
type ChainClient interface {
	DeployCollection(ctx context.Context, req *ton.DeployCollectionRequest) (out *ton.SendResult, err error)
	MintItem(ctx context.Context, req *ton.MintItemRequest) (out *ton.SendResult, err error)
}

// CollectionDeployer drives NFT collections through the deploy
// pipeline: CREATING rows get claimed to MINTING, validated, their
// metadata uploaded and the deploy message sent. Rejected rows park as
// VALIDATION_FAILED, everything that breaks past validation parks as
// FAILED, and both wait for an operator.
type CollectionDeployer struct {
	config   *config.Config
	store    Store
	chain    ChainClient
	metadata MetadataUploader
	monitor  *monitor_settler.Monitor
	log      *logrus.Entry
}

func NewCollectionDeployer(config *config.Config) (self *CollectionDeployer) {
	self = new(CollectionDeployer)
	self.config = config
	self.log = logger.NewSublogger("collection-deployer")
	return
}

func (self *CollectionDeployer) WithDB(db *gorm.DB) *CollectionDeployer {
	self.store = NewGormStore(db)
	return self
}

func (self *CollectionDeployer) WithStore(store Store) *CollectionDeployer {
	self.store = store
	return self
}

func (self *CollectionDeployer) WithChain(chain ChainClient) *CollectionDeployer {
	self.chain = chain
	return self
}

func (self *CollectionDeployer) WithMetadata(metadata MetadataUploader) *CollectionDeployer {
	self.metadata = metadata
	return self
}

func (self *CollectionDeployer) WithMonitor(monitor *monitor_settler.Monitor) *CollectionDeployer {
	self.monitor = monitor
	return self
}

func (self *CollectionDeployer) Run(ctx context.Context) (err error) {
	collections, err := self.store.ClaimCreatingCollections(ctx, self.config.NftDeploy.BatchSize)
	if err != nil {
		self.monitor.Report.NftDeploy.Errors.DeployFailures.Inc()
		self.log.WithError(err).Error("Failed to claim collections")
		return
	}

	for i := range collections {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		self.deployCollection(ctx, &collections[i])
	}
	return nil
}

func (self *CollectionDeployer) deployCollection(ctx context.Context, collection *model.NftApiCollection) {
	log := self.log.WithField("collectionId", collection.ID)

	err := validateCollection(collection)
	if err != nil {
		self.parkCollection(ctx, collection, model.NftStatusValidationFailed)
		self.monitor.Report.NftDeploy.Errors.ValidationFailures.Inc()
		log.WithError(err).Warn("Collection failed validation, parking")
		return
	}

	wallet, err := self.findMinterWallet(ctx, collection.MinterWalletId)
	if err != nil {
		self.parkCollection(ctx, collection, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.DeployFailures.Inc()
		log.WithError(err).Error("Collection has no usable minter wallet, parking")
		return
	}

	metadataUrl, err := self.metadata.UploadJSON(ctx,
		self.config.NftDeploy.CollectionBucket,
		fmt.Sprintf("collection-%d.json", collection.ID),
		collectionMetadata(collection))
	if err != nil {
		self.parkCollection(ctx, collection, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.MetadataUploadFailures.Inc()
		log.WithError(err).Error("Failed to upload collection metadata, parking")
		return
	}

	deployed, err := self.chain.DeployCollection(ctx, &ton.DeployCollectionRequest{
		MinterMnemonic: wallet.Mnemonic,
		MetadataUrl:    metadataUrl,
	})
	if err != nil {
		self.parkCollection(ctx, collection, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.DeployFailures.Inc()
		log.WithError(err).Error("Collection deploy failed, parking")
		return
	}

	friendly, err := ton.FriendlyAddress(deployed.Address, self.config.Ton.IsTestnet)
	if err != nil {
		self.parkCollection(ctx, collection, model.NftStatusFailed)
		self.monitor.Report.NftDeploy.Errors.DeployFailures.Inc()
		log.WithError(err).Error("Deploy returned an unparseable address, parking")
		return
	}

	err = self.store.CompleteCollection(ctx, collection.ID, deployed.Address, friendly, metadataUrl)
	if err != nil {
		self.monitor.Report.NftDeploy.Errors.DeployFailures.Inc()
		log.WithError(err).Error("Failed to complete collection")
		return
	}

	self.monitor.Report.NftDeploy.State.CollectionsDeployed.Inc()
	log.WithField("address", friendly).Info("Collection deployed")
}

func (self *CollectionDeployer) findMinterWallet(ctx context.Context, walletId int64) (wallet *model.NftApiMinterWallet, err error) {
	wallet, err = self.store.MinterWallet(ctx, walletId)
	if err != nil {
		return nil, err
	}
	if wallet.Mnemonic == "" {
		return nil, fmt.Errorf("minter wallet %d has no mnemonic", walletId)
	}
	return
}

func (self *CollectionDeployer) parkCollection(ctx context.Context, collection *model.NftApiCollection, status model.NftStatus) {
	err := self.store.ParkCollection(ctx, collection.ID, status)
	if err != nil {
		self.log.WithError(err).
			WithField("collectionId", collection.ID).
			WithField("status", status).
			Error("Failed to park collection")
	}
	if status == model.NftStatusFailed {
		self.monitor.Report.NftDeploy.State.RowsParkedFailed.Inc()
	}
}

func validateCollection(collection *model.NftApiCollection) (err error) {
	if collection.Name == "" {
		return fmt.Errorf("collection %d has no name", collection.ID)
	}
	if collection.Image == "" {
		return fmt.Errorf("collection %d has no image", collection.ID)
	}
	if collection.MinterWalletId == 0 {
		return fmt.Errorf("collection %d has no minter wallet", collection.ID)
	}
	return nil
}

// collectionMetadata shapes the on-chain metadata document
func collectionMetadata(collection *model.NftApiCollection) map[string]interface{} {
	document := map[string]interface{}{
		"name":        collection.Name,
		"description": collection.Description,
		"image":       collection.Image,
	}
	if collection.CoverImage.Valid {
		document["cover_image"] = collection.CoverImage.String
	}
	if collection.SocialLinks.Status == pgtype.Present {
		document["social_links"] = json.RawMessage(collection.SocialLinks.Bytes)
	}
	return document
}
