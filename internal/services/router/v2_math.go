package router

import (
	"github.com/holiman/uint256"
)

// V2AmountOut prices an exact-in swap against constant-product reserves.
// The fee pair expresses the retained input fraction, e.g. 9975/10000.
//
//	out = in*feeNum*reserveOut / (reserveIn*feeDen + in*feeNum)
//
// Floor division, so the pool always rounds in its own favor.
func V2AmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeNum, feeDen uint64) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	if reserveIn == nil || reserveIn.IsZero() || reserveOut == nil || reserveOut.IsZero() {
		return nil, ErrZeroReserve
	}

	fNum := GetU256()
	fDen := GetU256()
	inWithFee := GetU256()
	den := GetU256()
	defer func() {
		PutU256(fNum)
		PutU256(fDen)
		PutU256(inWithFee)
		PutU256(den)
	}()

	fNum.SetUint64(feeNum)
	fDen.SetUint64(feeDen)

	if _, overflow := inWithFee.MulOverflow(amountIn, fNum); overflow {
		return nil, ErrAmountOverflow
	}
	if _, overflow := den.MulOverflow(reserveIn, fDen); overflow {
		return nil, ErrAmountOverflow
	}
	if _, overflow := den.AddOverflow(den, inWithFee); overflow {
		return nil, ErrAmountOverflow
	}

	return mulDiv(inWithFee, reserveOut, den)
}

// V2AmountIn prices an exact-out swap: the minimum input that yields
// amountOut.
//
//	in = reserveIn*out*feeDen / ((reserveOut-out)*feeNum) + 1
//
// Errors when the requested output meets or exceeds the reserve.
func V2AmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeNum, feeDen uint64) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrZeroAmount
	}
	if reserveIn == nil || reserveIn.IsZero() || reserveOut == nil || reserveOut.IsZero() {
		return nil, ErrZeroReserve
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	fNum := GetU256()
	fDen := GetU256()
	num := GetU256()
	den := GetU256()
	defer func() {
		PutU256(fNum)
		PutU256(fDen)
		PutU256(num)
		PutU256(den)
	}()

	fNum.SetUint64(feeNum)
	fDen.SetUint64(feeDen)

	if _, overflow := num.MulOverflow(reserveIn, amountOut); overflow {
		return nil, ErrAmountOverflow
	}
	den.Sub(reserveOut, amountOut)
	if _, overflow := den.MulOverflow(den, fNum); overflow {
		return nil, ErrAmountOverflow
	}

	in, err := mulDiv(num, fDen, den)
	if err != nil {
		return nil, err
	}
	in.Add(in, u256One)
	return in, nil
}
