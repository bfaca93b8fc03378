package report

import "go.uber.org/atomic"

type OrdersErrors struct {
	SettlementFailures atomic.Uint64 `json:"settlement_failures"`
	ValidationFailures atomic.Uint64 `json:"validation_failures"`
	CampaignFailures   atomic.Uint64 `json:"campaign_failures"`
	CsbtMintFailures   atomic.Uint64 `json:"csbt_mint_failures"`
}

type OrdersState struct {
	OrdersSettled           atomic.Uint64 `json:"orders_settled"`
	TicketsCreated          atomic.Uint64 `json:"tickets_created"`
	CampaignOrdersCompleted atomic.Uint64 `json:"campaign_orders_completed"`
	SpinsCredited           atomic.Uint64 `json:"spins_credited"`
	BonusSpinsGranted       atomic.Uint64 `json:"bonus_spins_granted"`
}

type OrdersReport struct {
	State  OrdersState  `json:"state"`
	Errors OrdersErrors `json:"errors"`
}
