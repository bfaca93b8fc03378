package report

import "go.uber.org/atomic"

type NotifierErrors struct {
	DeliveryFailures atomic.Uint64 `json:"delivery_failures"`
	RetriesExhausted atomic.Uint64 `json:"retries_exhausted"`
}

type NotifierState struct {
	NotificationsSent  atomic.Uint64 `json:"notifications_sent"`
	RecipientsSelected atomic.Uint64 `json:"recipients_selected"`
}

type NotifierReport struct {
	State  NotifierState  `json:"state"`
	Errors NotifierErrors `json:"errors"`
}
