package market

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

type MarketRegistry struct {
	quoters    []PoolQuoter
	validators []PoolValidator
}

func NewMarketRegistry() *MarketRegistry {
	return &MarketRegistry{
		quoters:    make([]PoolQuoter, 0),
		validators: make([]PoolValidator, 0),
	}
}

func NewDefaultMarketRegistry() *MarketRegistry {
	r := NewMarketRegistry()
	r.RegisterValidator(NewStateValidator())
	return r
}

func (r *MarketRegistry) RegisterQuoter(quoter PoolQuoter) {
	r.quoters = append(r.quoters, quoter)
}

func (r *MarketRegistry) RegisterValidator(validator PoolValidator) {
	r.validators = append(r.validators, validator)
}

func (r *MarketRegistry) GetQuoteExactIn(state *domain.PoolState, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	for _, quoter := range r.quoters {
		if quoter.SupportsPoolKind(state.Kind) {
			return quoter.QuoteExactIn(state, amountIn, zeroForOne)
		}
	}
	return nil, fmt.Errorf("no quoter found for pool kind: %v", state.Kind)
}

func (r *MarketRegistry) GetQuoteExactOut(state *domain.PoolState, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	for _, quoter := range r.quoters {
		if quoter.SupportsPoolKind(state.Kind) {
			return quoter.QuoteExactOut(state, amountOut, zeroForOne)
		}
	}
	return nil, fmt.Errorf("no quoter found for pool kind: %v", state.Kind)
}

func (r *MarketRegistry) GetQuote(state *domain.PoolState, amount *uint256.Int, zeroForOne bool, exactIn bool) (*uint256.Int, error) {
	if exactIn {
		return r.GetQuoteExactIn(state, amount, zeroForOne)
	}
	return r.GetQuoteExactOut(state, amount, zeroForOne)
}

func (r *MarketRegistry) IsPoolReady(state *domain.PoolState) bool {
	for _, validator := range r.validators {
		if validator.SupportsPoolKind(state.Kind) {
			return validator.IsReady(state)
		}
	}
	return state.IsReady()
}
