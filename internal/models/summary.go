package models

// CodeClicks pairs a short code with its click count.
type CodeClicks struct {
	ShortCode string `json:"shortCode"`
	Clicks    int    `json:"clicks"`
}

// Summary aggregates the registry for statistics views.
type Summary struct {
	TotalURLs   int          `json:"totalUrls"`
	ActiveURLs  int          `json:"activeUrls"`
	ExpiredURLs int          `json:"expiredUrls"`
	TotalClicks int          `json:"totalClicks"`
	TopByClicks []CodeClicks `json:"topByClicks"`
}
