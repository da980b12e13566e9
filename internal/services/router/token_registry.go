package router

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// TokenRegistry maps token contract addresses to compact integer IDs for
// O(1) array access on the hot path. IDs are dense and never reused.
type TokenRegistry struct {
	mu     sync.RWMutex
	toID   map[common.Address]domain.TokenID // address -> ID (write path)
	toAddr []common.Address                  // ID -> address (read path)
	nextID atomic.Uint32
}

// NewTokenRegistry creates a new token registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		toID:   make(map[common.Address]domain.TokenID, 1024),
		toAddr: make([]common.Address, 0, 1024),
	}
}

// GetOrCreate returns the ID for a token, creating one if it doesn't exist
func (r *TokenRegistry) GetOrCreate(token common.Address) domain.TokenID {
	// Fast path: read lock check
	r.mu.RLock()
	if id, ok := r.toID[token]; ok {
		r.mu.RUnlock()
		return id
	}
	r.mu.RUnlock()

	// Slow path: write lock to create
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double check after acquiring write lock
	if id, ok := r.toID[token]; ok {
		return id
	}

	id := domain.TokenID(r.nextID.Add(1) - 1)
	r.toID[token] = id
	r.toAddr = append(r.toAddr, token)
	return id
}

// GetID returns the ID for a token, or false if not registered
func (r *TokenRegistry) GetID(token common.Address) (domain.TokenID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.toID[token]
	return id, ok
}

// GetAddress returns the address for an ID
func (r *TokenRegistry) GetAddress(id domain.TokenID) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.toAddr) {
		return common.Address{}
	}
	return r.toAddr[id]
}

// Size returns the number of registered tokens
func (r *TokenRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.toAddr)
}

// GetAllAddresses returns all registered addresses (for iteration)
func (r *TokenRegistry) GetAllAddresses() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]common.Address, len(r.toAddr))
	copy(result, r.toAddr)
	return result
}
