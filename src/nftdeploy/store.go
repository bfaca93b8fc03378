package nftdeploy

import (
	"context"

	"github.com/onton-events/settler/src/utils/model"

	"gorm.io/gorm"
)

// Store is the persistence slice of the deploy pipelines. An interface
// so the pipelines can run against an in-memory fake in tests.
type Store interface {
	ClaimCreatingCollections(ctx context.Context, limit int) (collections []model.NftApiCollection, err error)
	ClaimCreatingItems(ctx context.Context, limit int) (items []model.NftApiItem, err error)
	MinterWallet(ctx context.Context, walletId int64) (wallet *model.NftApiMinterWallet, err error)
	CompletedCollection(ctx context.Context, collectionId int64) (collection *model.NftApiCollection, err error)
	CompleteCollection(ctx context.Context, collectionId int64, address, friendlyAddress, metadataUrl string) (err error)
	CompleteItem(ctx context.Context, itemId, collectionId, index int64, address, friendlyAddress, metadataUrl string) (err error)
	ParkCollection(ctx context.Context, collectionId int64, status model.NftStatus) (err error)
	ParkItem(ctx context.Context, itemId int64, status model.NftStatus) (err error)
}

// GormStore backs the deploy pipelines with postgres
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (self *GormStore) {
	self = new(GormStore)
	self.db = db
	return
}

// ClaimCreatingCollections flips CREATING collections to MINTING and
// returns them. SKIP LOCKED keeps two pipelines from claiming the
// same rows even without the job lease.
func (self *GormStore) ClaimCreatingCollections(ctx context.Context, limit int) (collections []model.NftApiCollection, err error) {
	err = self.db.WithContext(ctx).
		Raw(`UPDATE nft_api_collections
			SET status = 'MINTING', updated_at = NOW()
			WHERE id IN (SELECT id
				FROM nft_api_collections
				WHERE status = 'CREATING'
				ORDER BY created_at ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED)
			RETURNING *`, limit).
		Scan(&collections).Error
	return
}

func (self *GormStore) ClaimCreatingItems(ctx context.Context, limit int) (items []model.NftApiItem, err error) {
	err = self.db.WithContext(ctx).
		Raw(`UPDATE nft_api_items
			SET status = 'MINTING', updated_at = NOW()
			WHERE id IN (SELECT id
				FROM nft_api_items
				WHERE status = 'CREATING'
				ORDER BY created_at ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED)
			RETURNING *`, limit).
		Scan(&items).Error
	return
}

func (self *GormStore) MinterWallet(ctx context.Context, walletId int64) (wallet *model.NftApiMinterWallet, err error) {
	wallet = new(model.NftApiMinterWallet)
	err = self.db.WithContext(ctx).
		Table(model.TableNftApiMinterWallet).
		Where("id = ?", walletId).
		First(wallet).Error
	if err != nil {
		return nil, err
	}
	return
}

func (self *GormStore) CompletedCollection(ctx context.Context, collectionId int64) (collection *model.NftApiCollection, err error) {
	collection = new(model.NftApiCollection)
	err = self.db.WithContext(ctx).
		Table(model.TableNftApiCollections).
		Where("id = ? AND status = ?", collectionId, model.NftStatusCompleted).
		First(collection).Error
	if err != nil {
		return nil, err
	}
	return
}

func (self *GormStore) CompleteCollection(ctx context.Context, collectionId int64, address, friendlyAddress, metadataUrl string) (err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableNftApiCollections).
		Where("id = ? AND status = ?", collectionId, model.NftStatusMinting).
		Updates(map[string]interface{}{
			"status":           model.NftStatusCompleted,
			"address":          address,
			"friendly_address": friendlyAddress,
			"metadata_url":     metadataUrl,
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
	return
}

// CompleteItem completes the item and advances the collection's last
// registered index in one transaction, the two must not come apart.
func (self *GormStore) CompleteItem(ctx context.Context, itemId, collectionId, index int64, address, friendlyAddress, metadataUrl string) (err error) {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		err = tx.Table(model.TableNftApiItems).
			Where("id = ? AND status = ?", itemId, model.NftStatusMinting).
			Updates(map[string]interface{}{
				"status":           model.NftStatusCompleted,
				"nft_index":        index,
				"address":          address,
				"friendly_address": friendlyAddress,
				"metadata_url":     metadataUrl,
				"updated_at":       gorm.Expr("NOW()"),
			}).Error
		if err != nil {
			return
		}

		return tx.Table(model.TableNftApiCollections).
			Where("id = ? AND last_registered_index < ?", collectionId, index).
			UpdateColumn("last_registered_index", index).Error
	})
}

func (self *GormStore) ParkCollection(ctx context.Context, collectionId int64, status model.NftStatus) (err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableNftApiCollections).
		Where("id = ?", collectionId).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	return
}

func (self *GormStore) ParkItem(ctx context.Context, itemId int64, status model.NftStatus) (err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableNftApiItems).
		Where("id = ?", itemId).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	return
}
