package router

import (
	"github.com/holiman/uint256"
)

// Single-tick concentrated-liquidity pricing. The pool is treated as if the
// current in-range liquidity extended indefinitely, which holds for the
// small trade sizes this engine probes with. Fee tiers are parts per
// million: 500 = 0.05%, 3000 = 0.3%.

// v3NetIn strips the pool fee from the input.
func v3NetIn(amountIn *uint256.Int, feePPM uint32) *uint256.Int {
	fee := GetU256()
	defer PutU256(fee)
	fee.SetUint64(uint64(1_000_000 - feePPM))
	// fee < u256FeeBase, so the 512-bit quotient always fits
	net := new(uint256.Int)
	net.MulDivOverflow(amountIn, fee, u256FeeBase)
	return net
}

// v3GrossIn is the inverse of v3NetIn with ceil rounding.
func v3GrossIn(netIn *uint256.Int, feePPM uint32) (*uint256.Int, error) {
	keep := GetU256()
	defer PutU256(keep)
	keep.SetUint64(uint64(1_000_000 - feePPM))
	return mulDivCeil(netIn, u256FeeBase, keep)
}

// V3AmountOut prices an exact-in swap within the current tick. Returns the
// output amount and the post-trade sqrt price.
func V3AmountOut(amountIn, sqrtPriceX96, liquidity *uint256.Int, feePPM uint32, zeroForOne bool) (*uint256.Int, *uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	if liquidity == nil || liquidity.IsZero() {
		return nil, nil, ErrZeroLiquidity
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.IsZero() {
		return nil, nil, ErrZeroSqrtPrice
	}
	if !validSqrtPrice(sqrtPriceX96) {
		return nil, nil, ErrSqrtPriceOutOfRange
	}
	if feePPM >= 1_000_000 {
		return nil, nil, ErrInvalidPool
	}

	netIn := v3NetIn(amountIn, feePPM)
	if netIn.IsZero() {
		return nil, nil, ErrZeroAmount
	}

	liqQ96 := GetU256()
	defer PutU256(liqQ96)
	if _, overflow := liqQ96.MulOverflow(liquidity, Q96); overflow {
		return nil, nil, ErrAmountOverflow
	}

	if zeroForOne {
		// sqrtP' = L*Q96*sqrtP / (L*Q96 + netIn*sqrtP), price moves down
		den := GetU256()
		defer PutU256(den)
		if _, overflow := den.MulOverflow(netIn, sqrtPriceX96); overflow {
			return nil, nil, ErrAmountOverflow
		}
		if _, overflow := den.AddOverflow(den, liqQ96); overflow {
			return nil, nil, ErrAmountOverflow
		}
		nextSqrt, err := mulDivCeil(liqQ96, sqrtPriceX96, den)
		if err != nil {
			return nil, nil, err
		}
		if nextSqrt.IsZero() || nextSqrt.Cmp(sqrtPriceX96) > 0 {
			return nil, nil, ErrInsufficientLiquidity
		}

		// out(token1) = L * (sqrtP - sqrtP') / Q96
		delta := GetU256()
		defer PutU256(delta)
		delta.Sub(sqrtPriceX96, nextSqrt)
		out, err := mulDiv(liquidity, delta, Q96)
		if err != nil {
			return nil, nil, err
		}
		return out, nextSqrt, nil
	}

	// sqrtP' = sqrtP + netIn*Q96/L, price moves up
	step, err := mulDiv(netIn, Q96, liquidity)
	if err != nil {
		return nil, nil, err
	}
	nextSqrt := new(uint256.Int)
	if _, overflow := nextSqrt.AddOverflow(sqrtPriceX96, step); overflow {
		return nil, nil, ErrAmountOverflow
	}

	// out(token0) = L*Q96 * (sqrtP' - sqrtP) / (sqrtP * sqrtP')
	delta := GetU256()
	defer PutU256(delta)
	delta.Sub(nextSqrt, sqrtPriceX96)
	t, err := mulDiv(delta, Q96, nextSqrt)
	if err != nil {
		return nil, nil, err
	}
	out, err := mulDiv(liquidity, t, sqrtPriceX96)
	if err != nil {
		return nil, nil, err
	}
	return out, nextSqrt, nil
}

// V3AmountIn prices an exact-out swap within the current tick: the minimum
// input that yields amountOut. Rounds against the trader at every step.
func V3AmountIn(amountOut, sqrtPriceX96, liquidity *uint256.Int, feePPM uint32, zeroForOne bool) (*uint256.Int, *uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	if liquidity == nil || liquidity.IsZero() {
		return nil, nil, ErrZeroLiquidity
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.IsZero() {
		return nil, nil, ErrZeroSqrtPrice
	}
	if !validSqrtPrice(sqrtPriceX96) {
		return nil, nil, ErrSqrtPriceOutOfRange
	}
	if feePPM >= 1_000_000 {
		return nil, nil, ErrInvalidPool
	}

	if zeroForOne {
		// Receiving token1: sqrtP' = sqrtP - out*Q96/L
		step, err := mulDivCeil(amountOut, Q96, liquidity)
		if err != nil {
			return nil, nil, err
		}
		if step.Cmp(sqrtPriceX96) >= 0 {
			return nil, nil, ErrInsufficientLiquidity
		}
		nextSqrt := new(uint256.Int).Sub(sqrtPriceX96, step)
		if nextSqrt.Cmp(minSqrtRatio) < 0 {
			return nil, nil, ErrInsufficientLiquidity
		}

		// netIn(token0) = L*Q96 * (sqrtP - sqrtP') / (sqrtP * sqrtP'), ceil
		delta := GetU256()
		defer PutU256(delta)
		delta.Sub(sqrtPriceX96, nextSqrt)
		t, err := mulDivCeil(delta, Q96, nextSqrt)
		if err != nil {
			return nil, nil, err
		}
		netIn, err := mulDivCeil(liquidity, t, sqrtPriceX96)
		if err != nil {
			return nil, nil, err
		}
		in, err := v3GrossIn(netIn, feePPM)
		if err != nil {
			return nil, nil, err
		}
		in.Add(in, u256One)
		return in, nextSqrt, nil
	}

	// Receiving token0: sqrtP' = L*Q96*sqrtP / (L*Q96 - out*sqrtP)
	liqQ96 := GetU256()
	defer PutU256(liqQ96)
	if _, overflow := liqQ96.MulOverflow(liquidity, Q96); overflow {
		return nil, nil, ErrAmountOverflow
	}
	outSqrt := GetU256()
	defer PutU256(outSqrt)
	if _, overflow := outSqrt.MulOverflow(amountOut, sqrtPriceX96); overflow {
		return nil, nil, ErrAmountOverflow
	}
	if outSqrt.Cmp(liqQ96) >= 0 {
		return nil, nil, ErrInsufficientLiquidity
	}
	den := GetU256()
	defer PutU256(den)
	den.Sub(liqQ96, outSqrt)
	nextSqrt, err := mulDivCeil(liqQ96, sqrtPriceX96, den)
	if err != nil {
		return nil, nil, err
	}

	// netIn(token1) = L * (sqrtP' - sqrtP) / Q96, ceil
	delta := GetU256()
	defer PutU256(delta)
	delta.Sub(nextSqrt, sqrtPriceX96)
	netIn, err := mulDivCeil(liquidity, delta, Q96)
	if err != nil {
		return nil, nil, err
	}
	in, err := v3GrossIn(netIn, feePPM)
	if err != nil {
		return nil, nil, err
	}
	in.Add(in, u256One)
	return in, nextSqrt, nil
}
