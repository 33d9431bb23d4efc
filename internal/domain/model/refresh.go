package model

import "time"

type RefreshKind string

const (
	RefreshStarted   RefreshKind = "refresh.started"
	RefreshSucceeded RefreshKind = "refresh.succeeded"
	RefreshFailed    RefreshKind = "refresh.failed"
)

// RefreshEvent reports one step of a rate refresh. Rates and Timestamp are
// set on success only, Message on failure only.
type RefreshEvent struct {
	Kind      RefreshKind `json:"kind"`
	Rates     *RateTable  `json:"rates,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
}
