package router

import (
	"sync"

	"github.com/holiman/uint256"
)

// Pre-computed constants (avoid allocation on every call)
var (
	// Q96 = 2^96, the sqrt-price fixed-point scale
	Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

	u256BpsDenom = uint256.NewInt(10000)
	u256FeeBase  = uint256.NewInt(1_000_000)
	u256One      = uint256.NewInt(1)

	// Sanity bounds on sqrtPriceX96, mirroring the canonical tick range.
	minSqrtRatio = uint256.NewInt(4295128739)
	maxSqrtRatio = mustU256("1461446703485210103287273052203988822378723970342")
)

func mustU256(dec string) *uint256.Int {
	v, err := uint256.FromDecimal(dec)
	if err != nil {
		panic(err)
	}
	return v
}

// Object pool for zero-allocation hot path

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

// GetU256 gets a uint256.Int from the pool
func GetU256() *uint256.Int {
	return uint256Pool.Get().(*uint256.Int)
}

// PutU256 returns a uint256.Int to the pool
func PutU256(v *uint256.Int) {
	v.Clear()
	uint256Pool.Put(v)
}

// mulDiv computes a*b/den with a 512-bit intermediate. Reports overflow when
// the quotient does not fit 256 bits.
func mulDiv(a, b, den *uint256.Int) (*uint256.Int, error) {
	if den.IsZero() {
		return nil, ErrZeroReserve
	}
	res := new(uint256.Int)
	if _, overflow := res.MulDivOverflow(a, b, den); overflow {
		return nil, ErrAmountOverflow
	}
	return res, nil
}

// mulDivCeil is mulDiv rounding up.
func mulDivCeil(a, b, den *uint256.Int) (*uint256.Int, error) {
	res, err := mulDiv(a, b, den)
	if err != nil {
		return nil, err
	}
	rem := GetU256()
	defer PutU256(rem)
	rem.MulMod(a, b, den)
	if !rem.IsZero() {
		res.Add(res, u256One)
	}
	return res, nil
}

// applyBpHaircut returns amount*(10000-bp)/10000.
func applyBpHaircut(amount *uint256.Int, bp uint16) *uint256.Int {
	if bp == 0 {
		return new(uint256.Int).Set(amount)
	}
	keep := GetU256()
	defer PutU256(keep)
	keep.SetUint64(uint64(10000 - bp))
	// keep < u256BpsDenom, so the 512-bit quotient always fits
	out := new(uint256.Int)
	out.MulDivOverflow(amount, keep, u256BpsDenom)
	return out
}

func validSqrtPrice(sqrtPriceX96 *uint256.Int) bool {
	return sqrtPriceX96.Cmp(minSqrtRatio) >= 0 && sqrtPriceX96.Cmp(maxSqrtRatio) <= 0
}
