package router

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// V2Quoter prices constant-product pools for the market registry.
type V2Quoter struct{}

func NewV2Quoter() *V2Quoter {
	return &V2Quoter{}
}

func (q *V2Quoter) SupportsPoolKind(kind domain.PoolKind) bool {
	return kind == domain.PoolKindV2
}

func (q *V2Quoter) QuoteExactIn(state *domain.PoolState, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	rIn, rOut := state.Reserve0, state.Reserve1
	if !zeroForOne {
		rIn, rOut = rOut, rIn
	}
	return V2AmountOut(amountIn, rIn, rOut, state.FeeNum, state.FeeDen)
}

func (q *V2Quoter) QuoteExactOut(state *domain.PoolState, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	rIn, rOut := state.Reserve0, state.Reserve1
	if !zeroForOne {
		rIn, rOut = rOut, rIn
	}
	return V2AmountIn(amountOut, rIn, rOut, state.FeeNum, state.FeeDen)
}

// V3Quoter prices concentrated-liquidity pools within the current tick.
type V3Quoter struct{}

func NewV3Quoter() *V3Quoter {
	return &V3Quoter{}
}

func (q *V3Quoter) SupportsPoolKind(kind domain.PoolKind) bool {
	return kind == domain.PoolKindV3
}

func (q *V3Quoter) QuoteExactIn(state *domain.PoolState, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	out, _, err := V3AmountOut(amountIn, state.SqrtPriceX96, state.Liquidity, state.FeePPM, zeroForOne)
	return out, err
}

func (q *V3Quoter) QuoteExactOut(state *domain.PoolState, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	in, _, err := V3AmountIn(amountOut, state.SqrtPriceX96, state.Liquidity, state.FeePPM, zeroForOne)
	return in, err
}
