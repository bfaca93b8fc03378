package report

import "go.uber.org/atomic"

type RewardSyncErrors struct {
	ApiFailures atomic.Uint64 `json:"api_failures"`
}

type RewardSyncState struct {
	ActivitiesSynced atomic.Uint64 `json:"activities_synced"`
	RewardsUpdated   atomic.Uint64 `json:"rewards_updated"`
}

type RewardSyncReport struct {
	State  RewardSyncState  `json:"state"`
	Errors RewardSyncErrors `json:"errors"`
}
