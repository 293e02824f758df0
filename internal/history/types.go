package history

import (
	"context"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Reading is one persisted sensor message.
type Reading struct {
	ID         int64              `json:"id"`
	SiteID     string             `json:"site_id"`
	RecordedAt time.Time          `json:"recorded_at"`
	Values     map[string]float64 `json:"values"`
}

// Frame is the metadata of one received camera frame.
type Frame struct {
	ID         int64     `json:"id"`
	SiteID     string    `json:"site_id"`
	ReceivedAt time.Time `json:"received_at"`
	SizeBytes  int       `json:"size_bytes"`
	Names      []string  `json:"names"`
}

// Filter selects a page of history. Limit defaults to 50 and is capped at 200.
type Filter struct {
	SiteID string
	Since  time.Time
	Limit  int
	Offset int
}

// ReadingList is a page of readings, newest first.
type ReadingList struct {
	Readings []Reading `json:"readings"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// Repository stores and lists history. Implementations are safe for
// concurrent use.
type Repository interface {
	RecordReading(ctx context.Context, siteID string, sample telemetry.Sample) error
	RecordFrame(ctx context.Context, frame Frame) error
	ListReadings(ctx context.Context, filter Filter) (*ReadingList, error)
	RecentFrames(ctx context.Context, limit int) ([]Frame, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// clampLimit applies the default and maximum page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
