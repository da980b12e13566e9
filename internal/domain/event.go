package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventType uint8

const (
	EventUnknown EventType = iota
	EventSyncV2
	EventSwapV3
)

func (t EventType) String() string {
	switch t {
	case EventSyncV2:
		return "SyncV2"
	case EventSwapV3:
		return "SwapV3"
	default:
		return "UNKNOWN"
	}
}

// PoolEvent is a decoded state-change record from the ingress stream,
// normalized from the wire envelope. V2 and V3 fields are populated
// according to Type.
type PoolEvent struct {
	Type EventType
	Pool common.Address
	Tx   common.Hash

	// V2
	Reserve0 *uint256.Int
	Reserve1 *uint256.Int

	// V3
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	Tick         int32
	// Signed pool-side deltas from the swap log. Negative means the pool
	// paid the token out. Nil when the feed did not carry them.
	Amount0 *big.Int
	Amount1 *big.Int

	// ReceivedAt is set by the dispatcher when the line is read, and is the
	// anchor for end-to-end latency accounting.
	ReceivedAt int64
}

// Pivot is the token a price move was resolved against: the token that left
// the pool, with the amount that left.
type Pivot struct {
	Token  common.Address
	Amount *uint256.Int
}
