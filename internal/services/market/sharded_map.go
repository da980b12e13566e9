package market

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

const numShards = 16

// ShardedStateMap holds the live pool-state snapshots, sharded to reduce lock
// contention between the feed writers and the evaluator readers. Entries are
// immutable: every update installs a fresh *domain.PoolState, so a reader
// holding a snapshot pointer never observes torn state.
type ShardedStateMap struct {
	shards [numShards]stateShard
}

type stateShard struct {
	mu    sync.RWMutex
	pools map[common.Address]*domain.PoolState
}

// NewShardedStateMap creates a new sharded pool-state map
func NewShardedStateMap() *ShardedStateMap {
	m := &ShardedStateMap{}
	for i := 0; i < numShards; i++ {
		m.shards[i].pools = make(map[common.Address]*domain.PoolState)
	}
	return m
}

// getShard returns the shard for a given address
func (m *ShardedStateMap) getShard(key common.Address) *stateShard {
	// First address byte is effectively uniform for deployed contracts
	idx := key[0] % numShards
	return &m.shards[idx]
}

// Get retrieves the current snapshot for a pool
func (m *ShardedStateMap) Get(key common.Address) (*domain.PoolState, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	state, ok := shard.pools[key]
	shard.mu.RUnlock()
	return state, ok
}

// Set installs a snapshot, used by preloading and tests
func (m *ShardedStateMap) Set(key common.Address, state *domain.PoolState) {
	state.UpdateFlags()
	shard := m.getShard(key)
	shard.mu.Lock()
	shard.pools[key] = state
	shard.mu.Unlock()
}

// UpdateV2Reserves replaces a V2 pool's reserves and returns the previous
// snapshot so the caller can infer the pivot from the reserve deltas.
// Unknown pools are not created here: a Sync for a pool we never preloaded
// carries no token pairing, so it cannot be evaluated anyway.
func (m *ShardedStateMap) UpdateV2Reserves(key common.Address, r0, r1 *uint256.Int) (prev *domain.PoolState, ok bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	prev, ok = shard.pools[key]
	if !ok || prev.Kind != domain.PoolKindV2 {
		shard.mu.Unlock()
		return nil, false
	}
	next := prev.Clone()
	next.Reserve0 = new(uint256.Int).Set(r0)
	next.Reserve1 = new(uint256.Int).Set(r1)
	next.LastUpdated = time.Now().UnixNano()
	next.UpdateFlags()
	shard.pools[key] = next
	shard.mu.Unlock()
	return prev, true
}

// UpdateV3State replaces a V3 pool's price point. Returns the previous
// snapshot for symmetry with UpdateV2Reserves.
func (m *ShardedStateMap) UpdateV3State(key common.Address, sqrtPriceX96, liquidity *uint256.Int, tick int32) (prev *domain.PoolState, ok bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	prev, ok = shard.pools[key]
	if !ok || prev.Kind != domain.PoolKindV3 {
		shard.mu.Unlock()
		return nil, false
	}
	next := prev.Clone()
	next.SqrtPriceX96 = new(uint256.Int).Set(sqrtPriceX96)
	next.Liquidity = new(uint256.Int).Set(liquidity)
	next.Tick = tick
	next.LastUpdated = time.Now().UnixNano()
	next.UpdateFlags()
	shard.pools[key] = next
	shard.mu.Unlock()
	return prev, true
}

// Delete removes a pool
func (m *ShardedStateMap) Delete(key common.Address) {
	shard := m.getShard(key)
	shard.mu.Lock()
	delete(shard.pools, key)
	shard.mu.Unlock()
}

// Len returns total count across all shards
func (m *ShardedStateMap) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].pools)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// ReadyLen counts pools with complete state
func (m *ShardedStateMap) ReadyLen() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for _, p := range m.shards[i].pools {
			if p.IsReady() {
				total++
			}
		}
		m.shards[i].mu.RUnlock()
	}
	return total
}

// Range iterates over all pools (acquires locks per shard)
func (m *ShardedStateMap) Range(f func(key common.Address, state *domain.PoolState) bool) {
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for k, v := range m.shards[i].pools {
			if !f(k, v) {
				m.shards[i].mu.RUnlock()
				return
			}
		}
		m.shards[i].mu.RUnlock()
	}
}

// GetAll returns all snapshots as a slice
func (m *ShardedStateMap) GetAll() []*domain.PoolState {
	total := m.Len()
	result := make([]*domain.PoolState, 0, total)

	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for _, state := range m.shards[i].pools {
			result = append(result, state)
		}
		m.shards[i].mu.RUnlock()
	}
	return result
}
