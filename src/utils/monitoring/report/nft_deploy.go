package report

import "go.uber.org/atomic"

type NftDeployErrors struct {
	ValidationFailures     atomic.Uint64 `json:"validation_failures"`
	MetadataUploadFailures atomic.Uint64 `json:"metadata_upload_failures"`
	DeployFailures         atomic.Uint64 `json:"deploy_failures"`
	MintFailures           atomic.Uint64 `json:"mint_failures"`
}

type NftDeployState struct {
	CollectionsDeployed atomic.Uint64 `json:"collections_deployed"`
	ItemsMinted         atomic.Uint64 `json:"items_minted"`
	RowsParkedFailed    atomic.Uint64 `json:"rows_parked_failed"`
}

type NftDeployReport struct {
	State  NftDeployState  `json:"state"`
	Errors NftDeployErrors `json:"errors"`
}
