package model

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

const (
	TableEvents        = "events"
	TableEventPayments = "event_payments"
	TableRewards       = "rewards"
)

type Event struct {
	ID         int64  `gorm:"primaryKey"`
	Uuid       string `gorm:"uniqueIndex"`
	Title      string
	ActivityId sql.NullString
	StartDate  int64
	HasPayment bool
	Tags       pq.StringArray `gorm:"type:text[]"`
}

type EventPayment struct {
	ID                int64 `gorm:"primaryKey"`
	EventUuid         string
	Title             string
	Price             float64
	TokenSymbol       string
	TicketType        string
	CollectionAddress sql.NullString
	TicketActivityId  sql.NullString
}

// Proof-of-participation record mirrored against the society API
type Reward struct {
	ID        int64 `gorm:"primaryKey"`
	EventUuid string
	VisitorId int64
	UserId    sql.NullInt64
	Claimed   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
