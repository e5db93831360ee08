package models

import "time"

// DirectReferrer is recorded when an access carries no referrer.
const DirectReferrer = "Direct"

// ClickEvent is a single access to an alias.
type ClickEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `json:"referrer"`
	// Location is a descriptive label from a pluggable source; it is not derived from the network.
	Location string `json:"location"`
}

// NewClickEvent builds a click, substituting DirectReferrer for an empty referrer.
func NewClickEvent(at time.Time, referrer, location string) ClickEvent {
	if referrer == "" {
		referrer = DirectReferrer
	}
	return ClickEvent{Timestamp: at, Referrer: referrer, Location: location}
}
