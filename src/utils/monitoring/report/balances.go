package report

import "go.uber.org/atomic"

type BalancesErrors struct {
	ProbeFailures atomic.Uint64 `json:"probe_failures"`
}

type BalancesState struct {
	WalletsChecked      atomic.Uint64 `json:"wallets_checked"`
	WalletsSkippedFresh atomic.Uint64 `json:"wallets_skipped_fresh"`
	BalancesUpdated     atomic.Uint64 `json:"balances_updated"`
}

type BalancesReport struct {
	State  BalancesState  `json:"state"`
	Errors BalancesErrors `json:"errors"`
}
