package market

import (
	"github.com/hxuan190/arb-engine/internal/domain"
)

// StateValidator checks that a snapshot carries everything the math layer
// needs before the pool is offered to the catalog or the simulator.
type StateValidator struct{}

func NewStateValidator() *StateValidator {
	return &StateValidator{}
}

func (v *StateValidator) IsReady(state *domain.PoolState) bool {
	switch state.Kind {
	case domain.PoolKindV2:
		if state.Reserve0 == nil || state.Reserve0.IsZero() {
			return false
		}
		if state.Reserve1 == nil || state.Reserve1.IsZero() {
			return false
		}
		return state.FeeNum > 0 && state.FeeDen > state.FeeNum
	case domain.PoolKindV3:
		if state.SqrtPriceX96 == nil || state.SqrtPriceX96.IsZero() {
			return false
		}
		return state.Liquidity != nil && !state.Liquidity.IsZero()
	default:
		return false
	}
}

func (v *StateValidator) SupportsPoolKind(kind domain.PoolKind) bool {
	return kind == domain.PoolKindV2 || kind == domain.PoolKindV3
}
