package model

import (
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/jackc/pgtype"
)

const (
	TableNftApiCollections  = "nft_api_collections"
	TableNftApiItems        = "nft_api_items"
	TableNftApiMinterWallet = "nft_api_minter_wallets"
)

// CREATE TYPE nft_status AS ENUM ('CREATING', 'MINTING', 'VALIDATION_FAILED', 'FAILED', 'COMPLETED');
type NftStatus string

const (
	NftStatusCreating         NftStatus = "CREATING"
	NftStatusMinting          NftStatus = "MINTING"
	NftStatusValidationFailed NftStatus = "VALIDATION_FAILED"
	NftStatusFailed           NftStatus = "FAILED"
	NftStatusCompleted        NftStatus = "COMPLETED"
)

func (self *NftStatus) Scan(value interface{}) error {
	*self = NftStatus(value.(string))
	return nil
}

func (self NftStatus) Value() (driver.Value, error) {
	return string(self), nil
}

type NftApiCollection struct {
	ID          int64 `gorm:"primaryKey"`
	Name        string
	Description string
	Image       string
	CoverImage  sql.NullString
	SocialLinks pgtype.JSONB `gorm:"type:jsonb"`
	Royalties   pgtype.JSONB `gorm:"type:jsonb"`

	MinterWalletId int64
	CallbackUrl    sql.NullString

	// Raw (0:<hex>) and friendly (EQ.../UQ...) forms of the deployed address
	Address         sql.NullString
	FriendlyAddress sql.NullString
	MetadataUrl     sql.NullString

	// Index of the last item successfully minted under this collection.
	// Advanced only after a successful mint.
	LastRegisteredIndex int64

	Status NftStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type NftApiItem struct {
	ID           int64 `gorm:"primaryKey"`
	CollectionId sql.NullInt64
	Name         string
	Description  string
	Image        string
	ContentUrl   sql.NullString
	ContentType  sql.NullString
	Attributes   pgtype.JSONB `gorm:"type:jsonb"`
	Buttons      pgtype.JSONB `gorm:"type:jsonb"`

	OwnerWalletAddress sql.NullString

	NftIndex        sql.NullInt64
	Address         sql.NullString
	FriendlyAddress sql.NullString
	MetadataUrl     sql.NullString

	Status NftStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type NftApiMinterWallet struct {
	ID       int64 `gorm:"primaryKey"`
	Address  string
	Mnemonic string
}
