package model

import (
	"time"
)

const (
	TableWalletBalances = "wallet_balances"
	TableUserWallets    = "user_wallets"
)

type PlaceOfConnection string

const (
	PlaceOfConnectionCampaign PlaceOfConnection = "campaign"
	PlaceOfConnectionOrder    PlaceOfConnection = "order"
	PlaceOfConnectionConnect  PlaceOfConnection = "wallet_connect"
)

// Upserted by the balance reconciler. LastCheckedAt gates re-probing.
type WalletBalance struct {
	ID                int64             `gorm:"primaryKey"`
	UserId            int64             `gorm:"uniqueIndex:idx_wallet_balance_triple"`
	WalletAddress     string            `gorm:"uniqueIndex:idx_wallet_balance_triple"`
	PlaceOfConnection PlaceOfConnection `gorm:"uniqueIndex:idx_wallet_balance_triple"`

	// Jetton units, may exceed int64
	Balance string `gorm:"type:numeric"`

	// Derived jetton wallet the balance was read from
	JettonWalletAddress string

	LastCheckedAt time.Time
}

// Wallet connected through the wallet-proof flow. The proof the
// wallet signed at connect time is kept so payout paths can re-check
// it before trusting the address.
type UserWallet struct {
	ID            int64 `gorm:"primaryKey"`
	UserId        int64
	WalletAddress string

	// ton-proof material recorded at connect time
	ProofDomain    string
	ProofTimestamp int64
	ProofPayload   string
	ProofSignature []byte `gorm:"type:bytea"`
	ProofPublicKey []byte `gorm:"type:bytea"`

	CreatedAt time.Time
}
