package dto

import (
	"time"

	"github.com/noah-isme/teacher-admin/internal/roster"
)

// DashboardResponse is the stats card payload.
type DashboardResponse struct {
	Stats roster.Stats `json:"stats"`
	// LastUpdated is the snapshot fetch time as HH:MM:SS in the configured zone.
	LastUpdated string    `json:"last_updated"`
	SnapshotSeq uint64    `json:"snapshot_seq"`
	FetchedAt   time.Time `json:"fetched_at"`
}
