package router

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

// Simulator walks route legs hop by hop against the live cache snapshots.
// Each forward hop applies, in order: the input token's transfer tax, the
// pool's own pricing (which charges the pool fee), the slippage buffer, and
// the output token's transfer tax.
type Simulator struct {
	states   *market.ShardedStateMap
	safety   *market.SafetyTable
	registry *TokenRegistry
	quote    market.QuoteFunc
	memo     *QuoteCache

	slippageBp uint16
}

func NewSimulator(
	states *market.ShardedStateMap,
	safety *market.SafetyTable,
	registry *TokenRegistry,
	quote market.QuoteFunc,
	slippageBp uint16,
) *Simulator {
	return &Simulator{
		states:     states,
		safety:     safety,
		registry:   registry,
		quote:      quote,
		memo:       NewQuoteCache(),
		slippageBp: slippageBp,
	}
}

func (s *Simulator) Stop() {
	s.memo.Stop()
}

// LegAmounts runs a leg forward from amountIn and returns the full amounts
// trace: index 0 is the input, index i+1 the post-hop amount. An empty leg
// returns just the input.
func (s *Simulator) LegAmounts(leg *domain.RouteLeg, amountIn *uint256.Int) ([]*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}

	amounts := make([]*uint256.Int, 0, len(leg.Pools)+1)
	current := new(uint256.Int).Set(amountIn)
	amounts = append(amounts, current)

	for i := 0; i < len(leg.Pools); i++ {
		from := s.registry.GetAddress(leg.Hops[i])
		to := s.registry.GetAddress(leg.Hops[i+1])

		state, ok := s.states.Get(leg.Pools[i])
		if !ok {
			return nil, ErrNoPoolFound
		}
		zeroForOne, err := hopDirection(state, from, to)
		if err != nil {
			return nil, err
		}
		if !s.safety.Tradable(from) || !s.safety.Tradable(to) {
			return nil, ErrUnsafeToken
		}

		amt := applyBpHaircut(current, s.safety.TransferTaxBp(from))
		if amt.IsZero() {
			return nil, ErrInsufficientLiquidity
		}

		amt, err = s.poolQuote(state, amt, zeroForOne, true)
		if err != nil {
			return nil, err
		}

		amt = applyBpHaircut(amt, s.slippageBp)
		amt = applyBpHaircut(amt, s.safety.TransferTaxBp(to))
		if amt.IsZero() {
			return nil, ErrInsufficientLiquidity
		}

		current = amt
		amounts = append(amounts, current)
	}

	return amounts, nil
}

// LegAmountsExactOut walks a leg backwards: given the desired final output,
// it returns the trace whose first element is the required input. Pure pool
// math, used for exact-out sizing.
func (s *Simulator) LegAmountsExactOut(leg *domain.RouteLeg, amountOut *uint256.Int) ([]*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrZeroAmount
	}

	n := len(leg.Pools)
	amounts := make([]*uint256.Int, n+1)
	amounts[n] = new(uint256.Int).Set(amountOut)

	for i := n - 1; i >= 0; i-- {
		from := s.registry.GetAddress(leg.Hops[i])
		to := s.registry.GetAddress(leg.Hops[i+1])

		state, ok := s.states.Get(leg.Pools[i])
		if !ok {
			return nil, ErrNoPoolFound
		}
		zeroForOne, err := hopDirection(state, from, to)
		if err != nil {
			return nil, err
		}

		in, err := s.poolQuote(state, amounts[i+1], zeroForOne, false)
		if err != nil {
			return nil, err
		}
		amounts[i] = in
	}

	return amounts, nil
}

// poolQuote prices one hop through the memo cache.
func (s *Simulator) poolQuote(state *domain.PoolState, amount *uint256.Int, zeroForOne, exactIn bool) (*uint256.Int, error) {
	if cached, ok := s.memo.Get(state.Address, state.LastUpdated, amount, zeroForOne, exactIn); ok {
		metrics.QuoteCacheHits.Inc()
		return cached, nil
	}
	metrics.QuoteCacheMisses.Inc()

	result, err := s.quote(state, amount, zeroForOne, exactIn)
	if err != nil {
		return nil, err
	}
	s.memo.Set(state.Address, state.LastUpdated, amount, zeroForOne, exactIn, result)
	return result, nil
}

func hopDirection(state *domain.PoolState, from, to common.Address) (bool, error) {
	switch {
	case from == state.Token0 && to == state.Token1:
		return true, nil
	case from == state.Token1 && to == state.Token0:
		return false, nil
	default:
		return false, ErrDirectionMismatch
	}
}

// SimulateRoute splits a route around the pivot and runs both legs forward
// from the pivot amount: the buy leg spends it as base-token input, the sell
// leg unwinds the same quantity of the pivot token. The merged trace elides
// the duplicated pivot element.
func (s *Simulator) SimulateRoute(id domain.RouteID, route *domain.RoutePath, pivot domain.TokenID, pivotAmount *uint256.Int) (*domain.SimulatedRoute, error) {
	buy, sell, pivotIdx, err := SplitAroundPivot(route, pivot)
	if err != nil {
		return nil, err
	}

	buyAmounts, err := s.LegAmounts(&buy, pivotAmount)
	if err != nil {
		return nil, err
	}
	sellAmounts, err := s.LegAmounts(&sell, pivotAmount)
	if err != nil {
		return nil, err
	}

	merged := make([]*uint256.Int, 0, len(buyAmounts)+len(sellAmounts)-1)
	merged = append(merged, buyAmounts...)
	merged = append(merged, sellAmounts[1:]...)

	result := &domain.SimulatedRoute{
		Route:       id,
		PivotToken:  s.registry.GetAddress(pivot),
		PivotIndex:  pivotIdx,
		BuyAmounts:  buyAmounts,
		SellAmounts: sellAmounts,
		Amounts:     merged,
		Profit:      new(uint256.Int),
	}

	first := merged[0]
	last := merged[len(merged)-1]
	if last.Cmp(first) > 0 {
		result.Profit.Sub(last, first)
		bp := GetU256()
		defer PutU256(bp)
		bp.Mul(result.Profit, u256BpsDenom)
		bp.Div(bp, first)
		if bp.IsUint64() && bp.Uint64() <= uint64(1<<62) {
			result.ProfitBp = int64(bp.Uint64())
		} else {
			result.ProfitBp = 1 << 62
		}
	} else {
		result.Loss = true
	}

	return result, nil
}
