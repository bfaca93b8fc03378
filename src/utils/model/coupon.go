package model

import "time"

const TableCoupons = "coupons"

type Coupon struct {
	ID              int64  `gorm:"primaryKey"`
	Code            string `gorm:"uniqueIndex"`
	DiscountPercent int
	IsUsed          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
