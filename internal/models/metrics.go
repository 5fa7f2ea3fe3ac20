package models

import "time"

// SystemMetrics is a lightweight snapshot of process counters for the API.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RecordCallsTotal         uint64    `json:"record_calls_total"`
	RecordCallFailures       uint64    `json:"record_call_failures"`
	AverageRecordCallMs      float64   `json:"average_record_call_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	StaleSnapshots           uint64    `json:"stale_snapshots"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
