package report

import "go.uber.org/atomic"

type ClicksErrors struct {
	ConsumeFailures    atomic.Uint64 `json:"consume_failures"`
	LinkLookupFailures atomic.Uint64 `json:"link_lookup_failures"`
	MalformedPayloads  atomic.Uint64 `json:"malformed_payloads"`
}

type ClicksState struct {
	BatchesConsumed             atomic.Uint64  `json:"batches_consumed"`
	ClicksSaved                 atomic.Uint64  `json:"clicks_saved"`
	ClicksDropped               atomic.Uint64  `json:"clicks_dropped"`
	AverageClicksSavedPerMinute atomic.Float64 `json:"average_clicks_saved_per_minute"`
}

type ClicksReport struct {
	State  ClicksState  `json:"state"`
	Errors ClicksErrors `json:"errors"`
}
