package database

// SortKey selects the ordering of link listings. Both orders are descending:
// newest first for SortByCreatedAt, most clicked first for SortByClicks.
type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByClicks    SortKey = "clicks"
)
