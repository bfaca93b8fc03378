package model

import (
	"database/sql"
	"time"
)

const TableCampaignUserSpins = "token_campaign_user_spins"

type SpinType string

const (
	SpinTypePurchased      SpinType = "purchased"
	SpinTypeRewardedSpin   SpinType = "rewarded_spin"
	SpinTypeSpecificReward SpinType = "specific_reward"
)

type CampaignUserSpin struct {
	ID              int64 `gorm:"primaryKey"`
	UserId          int64
	SpinType        SpinType
	SpinPackageId   int64
	SpinIndex       int
	NftCollectionId sql.NullInt64
	IsMinted        bool

	CreatedAt time.Time
}
