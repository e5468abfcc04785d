package models

import "time"

// FrameDropDetection holds rolling frame timing statistics.
type FrameDropDetection struct {
	FrameDropRate  float64
	AvgFrameTimeMs float64
	P50FrameTimeMs float64
	P95FrameTimeMs float64
	P99FrameTimeMs float64
}

// SmoothScrollMetrics holds rolling scroll statistics.
type SmoothScrollMetrics struct {
	SmoothScrollPercentage float64
	AvgVelocity            float64
}

// AutoSizingMetrics holds rolling size-prediction statistics.
type AutoSizingMetrics struct {
	SizingAccuracy      float64
	SizingErrors        int
	DynamicResizeEvents int
	AverageSizingTimeMs float64
}

// MemoryUsage relates the tracked cache footprint to the configured budget.
type MemoryUsage struct {
	EstimatedBytes uint64
	BudgetBytes    uint64
	PressureLevel  float64
	EntryCount     int
}

// CacheStats holds cumulative cache effectiveness counters. Hit rate is
// deliberately cumulative rather than windowed: cache effectiveness is a
// long-run property, not a per-frame one.
type CacheStats struct {
	HitRate        float64
	Hits           int64
	Misses         int64
	ColdMisses     int64
	CapacityMisses int64
	Evictions      int64
	EntryCount     int
	EstimatedBytes uint64
}

// Pressure is the cleanup decision surface for the embedding renderer.
type Pressure struct {
	Level         float64
	ShouldCleanup bool
}

// CleanupResult reports the outcome of one cleanup pass. A rejected
// (already in flight) pass reports zero freed bytes and zero elapsed time.
type CleanupResult struct {
	FreedBytes uint64
	Elapsed    time.Duration
}

// MetricsSnapshot is the composite read-only report assembled on each
// GetMetrics call. Every field is always populated; with no samples the
// rates and counts are zero and the accuracy-style fields are 100.
type MetricsSnapshot struct {
	FrameDropDetection  FrameDropDetection
	SmoothScrollMetrics SmoothScrollMetrics
	AutoSizingMetrics   AutoSizingMetrics
	MemoryUsage         MemoryUsage
	CacheStats          CacheStats

	AutoSizingEfficiency  float64
	DynamicSizingAccuracy float64
	InvalidSamples        int64
}
