package router

import (
	"testing"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

// simEnv bundles the pieces a route simulation needs: a state cache, a
// safety table, a token registry and a simulator quoting through the market
// registry.
type simEnv struct {
	states   *market.ShardedStateMap
	safety   *market.SafetyTable
	registry *TokenRegistry
	catalog  *Catalog
	sim      *Simulator
}

func newSimEnv(t testing.TB, slippageBp uint16) *simEnv {
	t.Helper()
	env := &simEnv{
		states:   market.NewShardedStateMap(),
		safety:   market.NewSafetyTable(),
		registry: NewTokenRegistry(),
	}
	env.catalog = NewCatalog(env.registry, env.safety)

	mreg := market.NewDefaultMarketRegistry()
	mreg.RegisterQuoter(NewV2Quoter())
	mreg.RegisterQuoter(NewV3Quoter())

	env.sim = NewSimulator(env.states, env.safety, env.registry, mreg.GetQuote, slippageBp)
	t.Cleanup(env.sim.Stop)
	return env
}

// safeToken registers a token as screened and tradable with the given tax.
func (env *simEnv) safeToken(a gethcommon.Address, taxBp uint16) domain.TokenID {
	env.safety.Put(a, domain.TokenSafety{TransferTaxBp: taxBp, Decimals: 18})
	return env.registry.GetOrCreate(a)
}

func (env *simEnv) addV2Pool(a, t0, t1 gethcommon.Address, r0, r1 *uint256.Int) {
	env.states.Set(a, &domain.PoolState{
		Address:  a,
		Kind:     domain.PoolKindV2,
		Token0:   t0,
		Token1:   t1,
		Reserve0: r0,
		Reserve1: r1,
		FeeNum:   9975,
		FeeDen:   10000,
	})
}

func (env *simEnv) addV3Pool(a, t0, t1 gethcommon.Address, sqrtP, liq *uint256.Int, feePPM uint32) {
	env.states.Set(a, &domain.PoolState{
		Address:      a,
		Kind:         domain.PoolKindV3,
		Token0:       t0,
		Token1:       t1,
		SqrtPriceX96: sqrtP,
		Liquidity:    liq,
		FeePPM:       feePPM,
	})
}

func testAddr(b byte) gethcommon.Address {
	var a gethcommon.Address
	a[19] = b
	return a
}

func e18(n uint64) *uint256.Int {
	z := uint256.NewInt(n)
	return z.Mul(z, uint256.NewInt(1_000_000_000_000_000_000))
}

func u64(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

// haircut mirrors the basis-point reduction the simulator applies for taxes
// and slippage.
func haircut(amt *uint256.Int, bp uint16) *uint256.Int {
	out := new(uint256.Int).Mul(amt, uint256.NewInt(uint64(10000-bp)))
	return out.Div(out, uint256.NewInt(10000))
}
