package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// TokenID is a dense index assigned by the token registry. Route hops are
// stored as TokenIDs so hot-path comparisons are uint32 compares instead of
// 20-byte address compares.
type TokenID uint32

const InvalidTokenID = TokenID(0xFFFFFFFF)

// RouteID indexes into the catalog's route arena.
type RouteID uint32

// RoutePath is a cyclic trade path: Hops[0] == Hops[len-1] is a base token,
// Pools[i] trades Hops[i] into Hops[i+1]. Intermediate hops are distinct.
type RoutePath struct {
	Hops  []TokenID
	Pools []common.Address
	Kinds []PoolKind
}

func (r *RoutePath) HopCount() int {
	return len(r.Pools)
}

func (r *RoutePath) Base() TokenID {
	return r.Hops[0]
}

func (r *RoutePath) ContainsPool(pool common.Address) bool {
	for _, p := range r.Pools {
		if p == pool {
			return true
		}
	}
	return false
}

func (r *RoutePath) ContainsToken(t TokenID) bool {
	for _, h := range r.Hops {
		if h == t {
			return true
		}
	}
	return false
}

// Valid checks the structural invariants: n pools, n+1 hops, closed cycle.
func (r *RoutePath) Valid() bool {
	n := len(r.Pools)
	if n == 0 || len(r.Hops) != n+1 || len(r.Kinds) != n {
		return false
	}
	return r.Hops[0] == r.Hops[n]
}

// RouteLeg is one side of a route split around a pivot token. The pivot is
// the last hop of the buy leg and the first hop of the sell leg.
type RouteLeg struct {
	Hops  []TokenID
	Pools []common.Address
	Kinds []PoolKind
}

func (l *RouteLeg) HopCount() int {
	return len(l.Pools)
}

// TokenSafety is the per-token screening record. A token is tradable only
// when it is present in the safety table, is not a honeypot, and its
// transfer tax is below 50%.
type TokenSafety struct {
	Honeypot      bool
	TransferTaxBp uint16
	Decimals      uint8
}

const MaxTransferTaxBp = 5000

func (s TokenSafety) Tradable() bool {
	return !s.Honeypot && s.TransferTaxBp < MaxTransferTaxBp
}
