package domain

import "time"

// PageCounts holds the unique-visitor counters returned for a page
type PageCounts struct {
	Page          string `json:"page"`
	UniqueToday   int64  `json:"uniqueToday"`
	UniqueAllTime int64  `json:"uniqueAllTime"`
}

// VisitRequest carries the raw request signals the counter service works from.
// Page and UserAgent arrive unsanitized; the service normalizes them.
type VisitRequest struct {
	Page      string
	IPAddress string
	UserAgent string
	Timestamp time.Time
}
