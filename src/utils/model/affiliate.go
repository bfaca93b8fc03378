package model

import (
	"time"
)

const (
	TableAffiliateLinks  = "affiliate_links"
	TableAffiliateClicks = "affiliate_click"
)

type AffiliateLink struct {
	ID               int64  `gorm:"primaryKey"`
	LinkHash         string `gorm:"uniqueIndex"`
	AffiliatorUserId int64
	ItemType         string

	// Counters only ever grow
	TotalClicks    int64
	TotalPurchases int64

	CreatedAt time.Time
}

// Immutable, one row per consumed click event
type AffiliateClick struct {
	ID              int64 `gorm:"primaryKey"`
	AffiliateLinkId int64
	UserId          int64
	CreatedAt       time.Time
}
