package types

import "time"

// StreamEvent is one progress or terminal event emitted by the streaming
// planning run.
type StreamEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	EventID   string      `json:"event_id"`
	IsFinal   bool        `json:"is_final,omitempty"`
}

// StreamEvent type constants. One "complete" or "error" event terminates every
// stream regardless of how many progress events preceded it.
const (
	EventTypeStart       = "start"
	EventTypeCollectInfo = "collect_info"
	EventTypeFetchVenues = "fetch_venues"
	EventTypeGenerate    = "generate_plan"
	EventTypeValidate    = "validate_plan"
	EventTypeRetry       = "retry"
	EventTypeComplete    = "complete"
	EventTypeError       = "error"
)
