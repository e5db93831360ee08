package models

import "time"

// ShortURL is one alias record in the registry.
// Everything except IsExpired and Clicks is immutable after creation.
type ShortURL struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`

	// IsExpired is a cached projection of ExpiredAt(now). It is persisted but
	// must be refreshed before it is trusted.
	IsExpired bool `json:"isExpired"`

	// Clicks is append-only, in chronological order.
	Clicks []ClickEvent `json:"clicks"`
}

// ExpiredAt reports whether the record is expired at the given time.
// A record is still valid at exactly ExpiresAt.
func (u *ShortURL) ExpiredAt(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// Refresh recomputes the IsExpired cache against now and returns the new value.
func (u *ShortURL) Refresh(now time.Time) bool {
	u.IsExpired = u.ExpiredAt(now)
	return u.IsExpired
}

// ClickCount returns the number of recorded clicks.
func (u *ShortURL) ClickCount() int {
	return len(u.Clicks)
}

// Clone creates a deep copy of the record, click history included.
func (u *ShortURL) Clone() *ShortURL {
	c := *u
	if u.Clicks != nil {
		c.Clicks = make([]ClickEvent, len(u.Clicks))
		copy(c.Clicks, u.Clicks)
	}
	return &c
}
