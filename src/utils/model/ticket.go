package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const TableTickets = "tickets"

// Downstream admission row, created in the same transaction that flips
// the order to minted.
type Ticket struct {
	ID         int64 `gorm:"primaryKey"`
	EventUuid  string
	OrderUuid  uuid.UUID `gorm:"type:uuid"`
	UserId     sql.NullInt64
	NftAddress sql.NullString
	ActivityId sql.NullString
	Status     string

	CreatedAt time.Time
}

const (
	TicketStatusApproved = "approved"
	TicketStatusPending  = "pending"
)
