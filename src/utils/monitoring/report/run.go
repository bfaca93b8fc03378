package report

import "go.uber.org/atomic"

type RunErrors struct {
	TicksFailed      atomic.Uint64 `json:"ticks_failed"`
	TicksPanicked    atomic.Uint64 `json:"ticks_panicked"`
	LockAcquireError atomic.Uint64 `json:"lock_acquire_error"`
}

type RunState struct {
	StartTimestamp    atomic.Int64  `json:"start_timestamp"`
	UpForSeconds      atomic.Uint64 `json:"up_for_seconds"`
	LastTickTimestamp atomic.Int64  `json:"last_tick_timestamp"`
	TicksStarted      atomic.Uint64 `json:"ticks_started"`
	TicksSkipped      atomic.Uint64 `json:"ticks_skipped"`
}

type RunReport struct {
	State  RunState  `json:"state"`
	Errors RunErrors `json:"errors"`
}
