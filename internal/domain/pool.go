package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type PoolKind uint8

const (
	PoolKindV2 PoolKind = iota
	PoolKindV3
)

func (k PoolKind) String() string {
	switch k {
	case PoolKindV2:
		return "V2"
	case PoolKindV3:
		return "V3"
	default:
		return "UNKNOWN"
	}
}

type PoolFlags uint64

const (
	FlagActive  PoolFlags = 1 << 0
	FlagReady   PoolFlags = 1 << 1
	FlagV2      PoolFlags = 1 << 2
	FlagV3      PoolFlags = 1 << 3
	FlagHighLiq PoolFlags = 1 << 4
	FlagLowFee  PoolFlags = 1 << 5
)

const FlagReadyMask = FlagActive | FlagReady

// PoolState is an immutable snapshot of one pool. Writers build a fresh
// PoolState and swap the pointer in the cache; readers never mutate it.
type PoolState struct {
	Address common.Address `json:"address"`
	Kind    PoolKind       `json:"kind"`
	Token0  common.Address `json:"token0"`
	Token1  common.Address `json:"token1"`

	// V2 fields. FeeNum/FeeDen express the retained fraction of the input,
	// e.g. 9975/10000 for a 0.25% pool.
	Reserve0 *uint256.Int `json:"reserve0,omitempty"`
	Reserve1 *uint256.Int `json:"reserve1,omitempty"`
	FeeNum   uint64       `json:"feeNum,omitempty"`
	FeeDen   uint64       `json:"feeDen,omitempty"`

	// V3 fields. FeePPM is the fee tier in parts per million (500 = 0.05%).
	SqrtPriceX96 *uint256.Int `json:"sqrtPriceX96,omitempty"`
	Liquidity    *uint256.Int `json:"liquidity,omitempty"`
	Tick         int32        `json:"tick,omitempty"`
	TickSpacing  int32        `json:"tickSpacing,omitempty"`
	FeePPM       uint32       `json:"feePPM,omitempty"`

	LastUpdated int64     `json:"lastUpdated"`
	Flags       PoolFlags `json:"-"`
}

func (p *PoolState) IsReady() bool {
	return p.Flags&FlagReadyMask == FlagReadyMask
}

func (p *PoolState) HasFlags(mask PoolFlags) bool {
	return p.Flags&mask == mask
}

func (p *PoolState) UpdateFlags() {
	p.Flags = 0
	switch p.Kind {
	case PoolKindV2:
		p.Flags |= FlagV2
		if p.Reserve0 != nil && !p.Reserve0.IsZero() && p.Reserve1 != nil && !p.Reserve1.IsZero() {
			p.Flags |= FlagActive | FlagReady
		}
		if p.FeeDen > 0 && (p.FeeDen-p.FeeNum)*10000 < p.FeeDen*30 {
			p.Flags |= FlagLowFee
		}
	case PoolKindV3:
		p.Flags |= FlagV3
		if p.SqrtPriceX96 != nil && !p.SqrtPriceX96.IsZero() && p.Liquidity != nil && !p.Liquidity.IsZero() {
			p.Flags |= FlagActive | FlagReady
		}
		if p.FeePPM < 3000 {
			p.Flags |= FlagLowFee
		}
	}
}

// Other returns the pool's counterpart token, or the zero address when t is
// not one of the pair.
func (p *PoolState) Other(t common.Address) common.Address {
	switch t {
	case p.Token0:
		return p.Token1
	case p.Token1:
		return p.Token0
	default:
		return common.Address{}
	}
}

func (p *PoolState) Has(t common.Address) bool {
	return t == p.Token0 || t == p.Token1
}

// LiquidityProxy is a cheap comparable magnitude used only for ordering
// route buckets. Reserve sum for V2, in-range liquidity for V3.
func (p *PoolState) LiquidityProxy() *uint256.Int {
	proxy := new(uint256.Int)
	switch p.Kind {
	case PoolKindV2:
		if p.Reserve0 != nil {
			proxy.Add(proxy, p.Reserve0)
		}
		if p.Reserve1 != nil {
			proxy.Add(proxy, p.Reserve1)
		}
	case PoolKindV3:
		if p.Liquidity != nil {
			proxy.Set(p.Liquidity)
		}
	}
	return proxy
}

// Clone deep-copies the state so a writer can derive the next snapshot
// without touching the published one.
func (p *PoolState) Clone() *PoolState {
	next := *p
	if p.Reserve0 != nil {
		next.Reserve0 = new(uint256.Int).Set(p.Reserve0)
	}
	if p.Reserve1 != nil {
		next.Reserve1 = new(uint256.Int).Set(p.Reserve1)
	}
	if p.SqrtPriceX96 != nil {
		next.SqrtPriceX96 = new(uint256.Int).Set(p.SqrtPriceX96)
	}
	if p.Liquidity != nil {
		next.Liquidity = new(uint256.Int).Set(p.Liquidity)
	}
	return &next
}
