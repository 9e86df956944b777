package models

import "time"

// ServiceMetrics is a point-in-time summary of the process counters.
type ServiceMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	RendersTotal             uint64    `json:"rendersTotal"`
	RejectedEventsTotal      uint64    `json:"rejectedEventsTotal"`
	DownloadsServed          uint64    `json:"downloadsServed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
