package orders

import (
	"context"
	"database/sql"

	"github.com/onton-events/settler/src/utils/model"

	"gorm.io/gorm"
)

// CampaignGormStore backs the campaign settlement job with postgres
type CampaignGormStore struct {
	db *gorm.DB
}

func NewCampaignGormStore(db *gorm.DB) (self *CampaignGormStore) {
	self = new(CampaignGormStore)
	self.db = db
	return
}

func (self *CampaignGormStore) PendingOrders(ctx context.Context, limit int) (orders []model.CampaignOrder, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableCampaignOrders).
		Where("status = ?", model.CampaignOrderStatusProcessing).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return
}

func (self *CampaignGormStore) Wallet(ctx context.Context, userId int64, walletAddress string) (wallet *model.UserWallet, err error) {
	wallet = new(model.UserWallet)
	err = self.db.WithContext(ctx).
		Table(model.TableUserWallets).
		Where("user_id = ? AND wallet_address = ?", userId, walletAddress).
		First(wallet).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

// CreditAndComplete reads the user's spin position, builds the spin
// rows and completes the order, all in one transaction. A crash
// between the credit and the completion rolls both back, so a retry
// never double-credits.
func (self *CampaignGormStore) CreditAndComplete(ctx context.Context, order *model.CampaignOrder, build SpinBuilder) (spins []model.CampaignUserSpin, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		var maxIndex sql.NullInt64
		err = tx.Table(model.TableCampaignUserSpins).
			Where("user_id = ?", order.UserId).
			Select("MAX(spin_index)").
			Scan(&maxIndex).Error
		if err != nil {
			return
		}

		var purchasedCount int64
		err = tx.Table(model.TableCampaignUserSpins).
			Where("user_id = ? AND spin_type = ?", order.UserId, model.SpinTypePurchased).
			Count(&purchasedCount).Error
		if err != nil {
			return
		}

		spins = build(int(maxIndex.Int64), int(purchasedCount))

		err = tx.Table(model.TableCampaignUserSpins).Create(&spins).Error
		if err != nil {
			return
		}

		err = tx.Table(model.TableCampaignOrders).
			Where("id = ? AND status = ?", order.ID, model.CampaignOrderStatusProcessing).
			Updates(map[string]interface{}{
				"status":     model.CampaignOrderStatusCompleted,
				"updated_at": gorm.Expr("NOW()"),
			}).Error
		return
	})
	if err != nil {
		spins = nil
	}
	return
}

func (self *CampaignGormStore) FailOrder(ctx context.Context, order *model.CampaignOrder) (err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableCampaignOrders).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":     model.CampaignOrderStatusFailed,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	return
}
