package models

import "go.uber.org/atomic"

// CacheMetrics stores cumulative cache effectiveness counters.
type CacheMetrics struct {
	Hits           *atomic.Int64
	Misses         *atomic.Int64
	ColdMisses     *atomic.Int64
	CapacityMisses *atomic.Int64
	Evictions      *atomic.Int64
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{
		Hits:           atomic.NewInt64(0),
		Misses:         atomic.NewInt64(0),
		ColdMisses:     atomic.NewInt64(0),
		CapacityMisses: atomic.NewInt64(0),
		Evictions:      atomic.NewInt64(0),
	}
}

// Diagnostics counts conditions the monitor absorbs rather than surfaces.
type Diagnostics struct {
	InvalidSamples *atomic.Int64
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		InvalidSamples: atomic.NewInt64(0),
	}
}
