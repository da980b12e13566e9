package market

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

type PoolQuoter interface {
	QuoteExactIn(state *domain.PoolState, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error)

	QuoteExactOut(state *domain.PoolState, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error)

	// SupportsPoolKind returns true if this quoter can handle the given pool kind
	SupportsPoolKind(kind domain.PoolKind) bool
}

// PoolValidator defines the interface for validating pool readiness
type PoolValidator interface {
	// IsReady checks if a pool has enough state to be quoted
	IsReady(state *domain.PoolState) bool

	// SupportsPoolKind returns true if this validator can handle the given pool kind
	SupportsPoolKind(kind domain.PoolKind) bool
}

// QuoteFunc is the registry dispatch signature handed to the simulator.
type QuoteFunc func(state *domain.PoolState, amount *uint256.Int, zeroForOne bool, exactIn bool) (*uint256.Int, error)
