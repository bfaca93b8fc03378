package model

import (
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const TableOrders = "orders"

// CREATE TYPE order_state AS ENUM ('created', 'mint_request', 'minted', 'failed', 'validation_failed');
type OrderState string

const (
	OrderStateCreated          OrderState = "created"
	OrderStateMintRequest      OrderState = "mint_request"
	OrderStateMinted           OrderState = "minted"
	OrderStateFailed           OrderState = "failed"
	OrderStateValidationFailed OrderState = "validation_failed"
)

func (self *OrderState) Scan(value interface{}) error {
	*self = OrderState(value.(string))
	return nil
}

func (self OrderState) Value() (driver.Value, error) {
	return string(self), nil
}

type OrderType string

const (
	OrderTypeNftMint    OrderType = "nft_mint"
	OrderTypeCsbtTicket OrderType = "ts_csbt_ticket"
)

type Order struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Uuid         uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"uuid"`
	EventUuid    sql.NullString
	UserId       sql.NullInt64
	OwnerAddress sql.NullString
	TotalPrice   float64
	PaymentType  string
	OrderType    OrderType
	State        OrderState
	TrxHash      sql.NullString

	// Affiliate link hash the purchase came through
	UtmSource sql.NullString
	CouponId  sql.NullInt64

	CreatedAt time.Time
	UpdatedAt time.Time
}
