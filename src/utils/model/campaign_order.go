package model

import (
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const TableCampaignOrders = "token_campaign_orders"

type CampaignOrderStatus string

const (
	CampaignOrderStatusProcessing CampaignOrderStatus = "processing"
	CampaignOrderStatusCompleted  CampaignOrderStatus = "completed"
	CampaignOrderStatusFailed     CampaignOrderStatus = "failed"
)

func (self *CampaignOrderStatus) Scan(value interface{}) error {
	*self = CampaignOrderStatus(value.(string))
	return nil
}

func (self CampaignOrderStatus) Value() (driver.Value, error) {
	return string(self), nil
}

// Token-purchase campaign order. Settled by the campaign credit job:
// crediting the earned spins and completing the order happen in one
// database transaction.
type CampaignOrder struct {
	ID            int64     `gorm:"primaryKey"`
	Uuid          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	UserId        int64
	WalletAddress sql.NullString
	SpinCount     int
	AffiliateHash sql.NullString
	Status        CampaignOrderStatus
	TrxHash       sql.NullString

	CreatedAt time.Time
	UpdatedAt time.Time
}
