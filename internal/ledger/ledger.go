// Package ledger tracks the logical contents of the host's item cache:
// keys, sizes, recency and hit/miss counts. It never holds item data and
// never reclaims memory itself; it only supplies the accounting the
// pressure estimator decides on.
package ledger

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/hashicorp/golang-lru/simplelru"
	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// Ledger is the bookkeeping side of the host's item cache. Recency order
// is maintained by an LRU so the cleanup protocol can pick victims oldest
// first. A Bloom filter of every key ever seen splits misses into cold
// (first touch) and capacity (seen before, since evicted) misses.
//
// The ledger is single-threaded like the rest of the monitor; the
// cumulative counters are atomic so snapshots taken by the aggregator
// never read half-updated totals.
type Ledger struct {
	entries *simplelru.LRU
	seen    *bloom.BloomFilter

	bytes   uint64
	metrics *models.CacheMetrics
	logger  *zap.Logger
}

// New creates a Ledger bounded to cfg.MaxTrackedEntries keys. When the
// bound is hit the coldest entry is dropped from tracking, keeping the
// footprint estimate consistent.
func New(cfg *config.Config, logger *zap.Logger) (*Ledger, error) {
	l := &Ledger{
		seen: bloom.NewWithEstimates(
			cfg.BloomFilterSettings.ExpectedItems,
			cfg.BloomFilterSettings.FalsePositiveRate,
		),
		metrics: models.NewCacheMetrics(),
		logger:  logger,
	}

	entries, err := simplelru.NewLRU(cfg.MaxTrackedEntries, l.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry tracker: %w", err)
	}
	l.entries = entries

	return l, nil
}

// onEvict keeps the footprint and eviction count consistent no matter
// whether removal came from the cleanup protocol or the tracking bound.
func (l *Ledger) onEvict(_ interface{}, value interface{}) {
	entry, ok := value.(*models.CacheEntry)
	if !ok {
		l.logger.Warn("invalid entry type in ledger")
		return
	}
	if entry.SizeBytes > l.bytes {
		l.bytes = 0
	} else {
		l.bytes -= entry.SizeBytes
	}
	l.metrics.Evictions.Inc()
}

// RecordAccess records one cache access. A hit refreshes the entry's
// recency and hit count; a miss creates or replaces the entry and adds
// its size to the tracked footprint.
func (l *Ledger) RecordAccess(key string, sizeBytes uint64, hit bool) {
	if hit {
		l.metrics.Hits.Inc()
	} else {
		l.metrics.Misses.Inc()
		if l.seen.TestString(key) {
			l.metrics.CapacityMisses.Inc()
		} else {
			l.metrics.ColdMisses.Inc()
		}
	}
	l.seen.AddString(key)

	if value, ok := l.entries.Get(key); ok {
		entry := value.(*models.CacheEntry)
		if hit {
			entry.Hits++
		} else {
			entry.Misses++
		}
		entry.Touch()
		if sizeBytes != entry.SizeBytes {
			l.bytes += sizeBytes
			l.bytes -= entry.SizeBytes
			entry.SizeBytes = sizeBytes
		}
		return
	}

	entry := models.NewCacheEntry(key, sizeBytes)
	if hit {
		// A hit for an untracked key means the host cache predates this
		// monitor instance; start tracking it as-is.
		entry.Hits = 1
	} else {
		entry.Misses = 1
	}
	l.bytes += sizeBytes
	l.entries.Add(key, entry)
}

// EvictOldest removes entries least-recently-used first until at least
// targetBytes have been freed or the ledger is empty. It returns the
// bytes actually freed, which may be less than requested.
func (l *Ledger) EvictOldest(targetBytes uint64) uint64 {
	var freed uint64
	for freed < targetBytes {
		key, value, ok := l.entries.GetOldest()
		if !ok {
			break
		}
		freed += value.(*models.CacheEntry).SizeBytes
		l.entries.Remove(key)
	}
	return freed
}

// EstimatedBytes returns the tracked footprint.
func (l *Ledger) EstimatedBytes() uint64 {
	return l.bytes
}

// Len returns the number of tracked entries.
func (l *Ledger) Len() int {
	return l.entries.Len()
}

// Stats returns the cumulative cache statistics.
func (l *Ledger) Stats() models.CacheStats {
	hits := l.metrics.Hits.Load()
	misses := l.metrics.Misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = utils.Clamp(float64(hits)/float64(total)*100, 0, 100)
	}

	return models.CacheStats{
		HitRate:        hitRate,
		Hits:           hits,
		Misses:         misses,
		ColdMisses:     l.metrics.ColdMisses.Load(),
		CapacityMisses: l.metrics.CapacityMisses.Load(),
		Evictions:      l.metrics.Evictions.Load(),
		EntryCount:     l.entries.Len(),
		EstimatedBytes: l.bytes,
	}
}

// Purge drops all tracked entries without counting them as evictions.
// Used on disposal.
func (l *Ledger) Purge() {
	evictions := l.metrics.Evictions.Load()
	l.entries.Purge()
	l.metrics.Evictions.Store(evictions)
	l.bytes = 0
	l.seen.ClearAll()
}
