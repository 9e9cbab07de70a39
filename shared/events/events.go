package events

import "time"

// Event types
const (
	UserLookedUp = "user.lookup"
)

// Stream names
const (
	UserLookupStream = "user.lookups"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// UserLookedUpEvent is the audit record of one completed aggregation.
// FailedCapabilities lists capabilities whose data was replaced by empty
// defaults because a sub-query failed.
type UserLookedUpEvent struct {
	UserID             int64    `json:"userId"`
	RequestedBy        string   `json:"requestedBy"`
	RequestedByRole    string   `json:"requestedByRole,omitempty"`
	Capabilities       []string `json:"capabilities"`
	FailedCapabilities []string `json:"failedCapabilities"`
}
