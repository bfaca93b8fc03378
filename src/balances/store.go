package balances

import (
	"context"
	"time"

	"github.com/onton-events/settler/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore backs the reconciler with postgres
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (self *GormStore) {
	self = new(GormStore)
	self.db = db
	return
}

// Candidates gathers wallets from all three sources, repeats included
func (self *GormStore) Candidates(ctx context.Context) (candidates []candidate, err error) {
	var campaign []candidate
	err = self.db.WithContext(ctx).
		Table(model.TableCampaignOrders).
		Select("user_id, wallet_address, ? AS place", model.PlaceOfConnectionCampaign).
		Where("wallet_address IS NOT NULL AND status = ?", model.CampaignOrderStatusCompleted).
		Scan(&campaign).Error
	if err != nil {
		return
	}
	candidates = append(candidates, campaign...)

	var orders []candidate
	err = self.db.WithContext(ctx).
		Table(model.TableOrders).
		Select("user_id, owner_address AS wallet_address, ? AS place", model.PlaceOfConnectionOrder).
		Where("owner_address IS NOT NULL AND state = ?", model.OrderStateMinted).
		Scan(&orders).Error
	if err != nil {
		return
	}
	candidates = append(candidates, orders...)

	var connected []candidate
	err = self.db.WithContext(ctx).
		Table(model.TableUserWallets).
		Select("user_id, wallet_address, ? AS place", model.PlaceOfConnectionConnect).
		Scan(&connected).Error
	if err != nil {
		return
	}
	candidates = append(candidates, connected...)

	return
}

// IsFresh reports whether the stored balance was checked after the
// given cutoff
func (self *GormStore) IsFresh(ctx context.Context, wallet *candidate, since time.Time) (fresh bool, err error) {
	var count int64
	err = self.db.WithContext(ctx).
		Table(model.TableWalletBalances).
		Where("user_id = ? AND wallet_address = ? AND place_of_connection = ? AND last_checked_at > ?",
			wallet.UserId, wallet.WalletAddress, wallet.Place, since).
		Count(&count).Error
	if err != nil {
		return
	}
	fresh = count > 0
	return
}

func (self *GormStore) Upsert(ctx context.Context, row *model.WalletBalance) (err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableWalletBalances).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "wallet_address"},
				{Name: "place_of_connection"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "jetton_wallet_address", "last_checked_at"}),
		}).
		Create(row).Error
	return
}
