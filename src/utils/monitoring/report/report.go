package report

type Report struct {
	Run        *RunReport        `json:"run,omitempty"`
	Clicks     *ClicksReport     `json:"clicks,omitempty"`
	Orders     *OrdersReport     `json:"orders,omitempty"`
	NftDeploy  *NftDeployReport  `json:"nft_deploy,omitempty"`
	Notifier   *NotifierReport   `json:"notifier,omitempty"`
	Balances   *BalancesReport   `json:"balances,omitempty"`
	RewardSync *RewardSyncReport `json:"reward_sync,omitempty"`
}
