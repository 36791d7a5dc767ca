package models

import "time"

// Link represents a shortened link and its accumulated click analytics.
type Link struct {
	// ID is the unique identifier of the link in the database.
	ID int64
	// ShortCode is the code that resolves to the original URL.
	ShortCode string
	// OriginalURL is the full URL that the short code redirects to.
	OriginalURL string
	// Clicks is the number of recorded visits. It always equals the
	// number of entries in ClickHistory.
	Clicks int64
	// ClickHistory holds the recorded visits in insertion order.
	ClickHistory []ClickEvent
	// CreatedAt is the timestamp when the link was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the link was last modified.
	UpdatedAt time.Time
}

// ClickEvent represents a single recorded visit to a short code.
type ClickEvent struct {
	// Timestamp is when the visit happened.
	Timestamp time.Time
	// UserAgent is the visitor's User-Agent header, empty when unknown.
	UserAgent string
	// IP is the visitor's address, empty when unknown.
	IP string
	// Referer is the referring page, or "Direct" when none was sent.
	Referer string
}

// DirectReferer is recorded when a visit carries no Referer header.
const DirectReferer = "Direct"

// LinkPatch describes a partial admin edit. Nil fields are left untouched.
type LinkPatch struct {
	OriginalURL *string
	ShortCode   *string
}

// Summary is the aggregate view served to the admin dashboard.
type Summary struct {
	TotalURLs      int64
	TotalClicks    int64
	TopURLs        []Link
	RecentActivity []Link
	DailyStats     []DailyStat
	BrowserStats   []BrowserStat
	ReferrerStats  []ReferrerStat
}

// DailyStat is the click count for one UTC calendar day.
type DailyStat struct {
	Date   string
	Clicks int64
}

// BrowserStat is the click count for one browser family.
type BrowserStat struct {
	Browser string
	Count   int64
}

// ReferrerStat is the click count for one distinct referrer.
type ReferrerStat struct {
	Referrer string
	Count    int64
}
