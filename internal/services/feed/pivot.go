package feed

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// InferV2Pivot resolves the token a Sync moved the price against: the side
// whose reserve decreased is the token the pool paid out, and the delta is
// the pivot amount. Mint-like updates where nothing decreased carry no
// direction and yield no pivot.
func InferV2Pivot(prev *domain.PoolState, ev *domain.PoolEvent) (domain.Pivot, bool) {
	if prev.Reserve0 != nil && ev.Reserve0.Cmp(prev.Reserve0) < 0 {
		delta := new(uint256.Int).Sub(prev.Reserve0, ev.Reserve0)
		return domain.Pivot{Token: prev.Token0, Amount: delta}, true
	}
	if prev.Reserve1 != nil && ev.Reserve1.Cmp(prev.Reserve1) < 0 {
		delta := new(uint256.Int).Sub(prev.Reserve1, ev.Reserve1)
		return domain.Pivot{Token: prev.Token1, Amount: delta}, true
	}
	return domain.Pivot{}, false
}

// InferV3Pivot reads the swap log's signed deltas: the negative side left
// the pool. Events without amounts update the cache only.
func InferV3Pivot(prev *domain.PoolState, ev *domain.PoolEvent) (domain.Pivot, bool) {
	if ev.Amount0 != nil && ev.Amount0.Sign() < 0 {
		amt, overflow := uint256.FromBig(new(big.Int).Neg(ev.Amount0))
		if overflow {
			return domain.Pivot{}, false
		}
		return domain.Pivot{Token: prev.Token0, Amount: amt}, true
	}
	if ev.Amount1 != nil && ev.Amount1.Sign() < 0 {
		amt, overflow := uint256.FromBig(new(big.Int).Neg(ev.Amount1))
		if overflow {
			return domain.Pivot{}, false
		}
		return domain.Pivot{Token: prev.Token1, Amount: amt}, true
	}
	return domain.Pivot{}, false
}
