package router

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	quoteCacheTTL     = 200 * time.Millisecond // state changes invalidate via LastUpdated anyway
	quoteCacheMaxSize = 1024                   // Power of 2 for efficient modulo
	quoteCacheShards  = 16                     // Number of shards for reduced lock contention
)

// FNV-1a constants for zero-allocation hashing
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// cacheEntry represents a cached hop quote in contiguous memory
type cacheEntry struct {
	key    uint64
	amount uint256.Int
	expiry int64  // Unix nano for faster comparison
	used   uint32 // Clock bit for eviction
}

// cacheShard is a single shard of the cache
type cacheShard struct {
	mu      sync.RWMutex
	entries []cacheEntry
	size    int
	hand    int // Clock hand for eviction
}

// QuoteCache memoizes single-hop quotes with a sharded clock cache. The key
// folds in the pool's LastUpdated stamp, so a state update naturally misses
// instead of serving a stale quote.
type QuoteCache struct {
	shards   [quoteCacheShards]cacheShard
	stopChan chan struct{}
}

func NewQuoteCache() *QuoteCache {
	qc := &QuoteCache{
		stopChan: make(chan struct{}),
	}
	entriesPerShard := quoteCacheMaxSize / quoteCacheShards
	for i := 0; i < quoteCacheShards; i++ {
		qc.shards[i].entries = make([]cacheEntry, entriesPerShard)
	}
	go qc.cleanupLoop()
	return qc
}

// Stop stops the cleanup goroutine
func (qc *QuoteCache) Stop() {
	close(qc.stopChan)
}

// makeKeyInline generates a fast cache key using inline FNV-1a (zero allocation)
func makeKeyInline(pool common.Address, stateVersion int64, amount *uint256.Int, zeroForOne, exactIn bool) uint64 {
	h := uint64(fnvOffset64)

	for _, b := range pool {
		h ^= uint64(b)
		h *= fnvPrime64
	}

	for i := 0; i < 8; i++ {
		h ^= uint64(stateVersion>>(i*8)) & 0xFF
		h *= fnvPrime64
	}

	for i := 0; i < 4; i++ {
		limb := amount[i]
		for j := 0; j < 8; j++ {
			h ^= (limb >> (j * 8)) & 0xFF
			h *= fnvPrime64
		}
	}

	if zeroForOne {
		h ^= 1
	}
	h *= fnvPrime64
	if exactIn {
		h ^= 1
	}
	h *= fnvPrime64

	return h
}

// getShard returns the shard for a given key
func (qc *QuoteCache) getShard(key uint64) *cacheShard {
	return &qc.shards[key%quoteCacheShards]
}

func (qc *QuoteCache) Get(pool common.Address, stateVersion int64, amount *uint256.Int, zeroForOne, exactIn bool) (*uint256.Int, bool) {
	key := makeKeyInline(pool, stateVersion, amount, zeroForOne, exactIn)
	now := time.Now().UnixNano()

	shard := qc.getShard(key)
	shard.mu.RLock()

	// Linear search in shard (good cache locality for small arrays)
	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && now <= entry.expiry {
			atomic.StoreUint32(&entry.used, 1)
			out := new(uint256.Int).Set(&entry.amount)
			shard.mu.RUnlock()
			return out, true
		}
	}

	shard.mu.RUnlock()
	return nil, false
}

func (qc *QuoteCache) Set(pool common.Address, stateVersion int64, amount *uint256.Int, zeroForOne, exactIn bool, result *uint256.Int) {
	key := makeKeyInline(pool, stateVersion, amount, zeroForOne, exactIn)
	expiry := time.Now().Add(quoteCacheTTL).UnixNano()

	shard := qc.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Check if entry already exists, update if so
	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key {
			entry.amount.Set(result)
			entry.expiry = expiry
			atomic.StoreUint32(&entry.used, 1)
			return
		}
	}

	entriesPerShard := len(shard.entries)

	if shard.size < entriesPerShard {
		entry := &shard.entries[shard.size]
		entry.key = key
		entry.amount.Set(result)
		entry.expiry = expiry
		entry.used = 1
		shard.size++
		return
	}

	// Clock eviction: find an entry to evict
	for attempts := 0; attempts < entriesPerShard*2; attempts++ {
		entry := &shard.entries[shard.hand]
		shard.hand = (shard.hand + 1) % entriesPerShard

		now := time.Now().UnixNano()
		if atomic.LoadUint32(&entry.used) == 0 || now > entry.expiry {
			entry.key = key
			entry.amount.Set(result)
			entry.expiry = expiry
			entry.used = 1
			return
		}

		// Clear used bit (second chance)
		atomic.StoreUint32(&entry.used, 0)
	}

	// Fallback: overwrite at current hand position
	entry := &shard.entries[shard.hand]
	entry.key = key
	entry.amount.Set(result)
	entry.expiry = expiry
	entry.used = 1
	shard.hand = (shard.hand + 1) % entriesPerShard
}

// evictExpired marks expired entries as unused so Set reclaims them
func (qc *QuoteCache) evictExpired() {
	now := time.Now().UnixNano()

	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			entry := &shard.entries[j]
			if now > entry.expiry {
				atomic.StoreUint32(&entry.used, 0)
			}
		}
		shard.mu.Unlock()
	}
}

// Size returns current cache size across all shards
func (qc *QuoteCache) Size() int {
	total := 0
	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.RLock()
		total += shard.size
		shard.mu.RUnlock()
	}
	return total
}

func (qc *QuoteCache) cleanupLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-qc.stopChan:
			return
		case <-ticker.C:
			qc.evictExpired()
		}
	}
}
