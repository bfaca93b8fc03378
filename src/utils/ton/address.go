package ton

import (
	"github.com/tonkeeper/tongo/ton"
)

// NormalizeAddress parses any accepted TON address form (raw or
// friendly, bounceable or not) and returns the raw form used as the
// canonical representation in the database.
func NormalizeAddress(address string) (raw string, err error) {
	accountId, err := ton.ParseAccountID(address)
	if err != nil {
		return
	}
	raw = accountId.String()
	return
}

// FriendlyAddress renders the address in the bounceable user-facing
// form shown in wallets and notifications.
func FriendlyAddress(address string, testnet bool) (friendly string, err error) {
	accountId, err := ton.ParseAccountID(address)
	if err != nil {
		return
	}
	friendly = accountId.ToHuman(true, testnet)
	return
}

// IsValidAddress reports whether the string parses as a TON address.
// Used to decide between settling an order and parking it as
// unsettleable.
func IsValidAddress(address string) bool {
	_, err := ton.ParseAccountID(address)
	return err == nil
}
