package models

import "time"

// CacheEntry is the ledger's bookkeeping record for one logical cache item.
// The monitor never holds the item itself, only its accounting.
type CacheEntry struct {
	Key        string
	SizeBytes  uint64
	LastAccess time.Time
	Hits       int64
	Misses     int64
}

// NewCacheEntry creates an entry for a key first observed now.
func NewCacheEntry(key string, sizeBytes uint64) *CacheEntry {
	return &CacheEntry{
		Key:        key,
		SizeBytes:  sizeBytes,
		LastAccess: time.Now(),
	}
}

// Touch refreshes the entry's recency stamp.
func (e *CacheEntry) Touch() {
	e.LastAccess = time.Now()
}
