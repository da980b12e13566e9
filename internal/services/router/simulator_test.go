package router

import (
	"errors"
	"testing"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// buildTwoPoolCycle sets up the classic two-pool discrepancy: pool A prices
// X slightly under 1 U, pool B pays 1.1 U per X. Returns the route cycling
// U -> X -> U through A then B.
func buildTwoPoolCycle(t testing.TB, env *simEnv) (route domain.RoutePath, uAddr, xAddr gethcommon.Address) {
	t.Helper()
	uAddr, xAddr = testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 0)

	env.addV2Pool(testAddr(0xA1), uAddr, xAddr, e18(100), e18(99))
	env.addV2Pool(testAddr(0xB1), xAddr, uAddr, e18(100), e18(110))

	route = domain.RoutePath{
		Hops:  []domain.TokenID{u, x, u},
		Pools: []gethcommon.Address{testAddr(0xA1), testAddr(0xB1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV2},
	}
	return route, uAddr, xAddr
}

func TestLegAmountsForward(t *testing.T) {
	env := newSimEnv(t, 0)
	route, _, xAddr := buildTwoPoolCycle(t, env)

	x, _ := env.registry.GetID(xAddr)
	buy, _, _, err := SplitAroundPivot(&route, x)
	if err != nil {
		t.Fatal(err)
	}

	in := e18(1)
	amounts, err := env.sim.LegAmounts(&buy, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 2 {
		t.Fatalf("trace length = %d, want 2", len(amounts))
	}
	if amounts[0].Cmp(in) != 0 {
		t.Errorf("trace[0] = %s, want input", amounts[0].Dec())
	}

	want, err := V2AmountOut(in, e18(100), e18(99), 9975, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if amounts[1].Cmp(want) != 0 {
		t.Errorf("trace[1] = %s, want %s", amounts[1].Dec(), want.Dec())
	}
}

func TestLegAmountsEmptyLeg(t *testing.T) {
	env := newSimEnv(t, 0)
	leg := domain.RouteLeg{Hops: []domain.TokenID{0}}
	in := e18(1)
	amounts, err := env.sim.LegAmounts(&leg, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 1 || amounts[0].Cmp(in) != 0 {
		t.Fatalf("empty leg trace = %v", amounts)
	}
}

// TestLegAmountsHopOrdering pins the per-hop pipeline: input tax first,
// then the pool quote, then slippage, then output tax.
func TestLegAmountsHopOrdering(t *testing.T) {
	env := newSimEnv(t, 50)
	uAddr, xAddr := testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 100) // 1% transfer tax on X

	env.addV2Pool(testAddr(0xB1), xAddr, uAddr, e18(100), e18(110))

	leg := domain.RouteLeg{
		Hops:  []domain.TokenID{x, u},
		Pools: []gethcommon.Address{testAddr(0xB1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2},
	}

	in := e18(1)
	amounts, err := env.sim.LegAmounts(&leg, in)
	if err != nil {
		t.Fatal(err)
	}

	// Tax on the X input is charged before the pool sees the amount.
	taxed := haircut(in, 100)
	quoted, err := V2AmountOut(taxed, e18(100), e18(110), 9975, 10000)
	if err != nil {
		t.Fatal(err)
	}
	want := haircut(quoted, 50) // slippage, then U tax of zero

	if amounts[1].Cmp(want) != 0 {
		t.Errorf("hop output = %s, want %s", amounts[1].Dec(), want.Dec())
	}
}

func TestLegAmountsUnsafeToken(t *testing.T) {
	env := newSimEnv(t, 0)
	uAddr, hAddr := testAddr(1), testAddr(7)
	u := env.safeToken(uAddr, 0)
	env.safety.Put(hAddr, domain.TokenSafety{Honeypot: true, Decimals: 18})
	h := env.registry.GetOrCreate(hAddr)

	env.addV2Pool(testAddr(0xC1), uAddr, hAddr, e18(100), e18(100))

	leg := domain.RouteLeg{
		Hops:  []domain.TokenID{u, h},
		Pools: []gethcommon.Address{testAddr(0xC1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2},
	}
	if _, err := env.sim.LegAmounts(&leg, e18(1)); !errors.Is(err, ErrUnsafeToken) {
		t.Fatalf("want ErrUnsafeToken, got %v", err)
	}
}

func TestLegAmountsDirectionMismatch(t *testing.T) {
	env := newSimEnv(t, 0)
	uAddr, xAddr, zAddr := testAddr(1), testAddr(2), testAddr(3)
	u := env.safeToken(uAddr, 0)
	env.safeToken(xAddr, 0)
	z := env.safeToken(zAddr, 0)

	env.addV2Pool(testAddr(0xA1), uAddr, xAddr, e18(100), e18(100))

	// Z is not in the pool's pair.
	leg := domain.RouteLeg{
		Hops:  []domain.TokenID{u, z},
		Pools: []gethcommon.Address{testAddr(0xA1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2},
	}
	if _, err := env.sim.LegAmounts(&leg, e18(1)); !errors.Is(err, ErrDirectionMismatch) {
		t.Fatalf("want ErrDirectionMismatch, got %v", err)
	}
}

func TestLegAmountsExactOut(t *testing.T) {
	env := newSimEnv(t, 0)
	route, _, xAddr := buildTwoPoolCycle(t, env)

	x, _ := env.registry.GetID(xAddr)
	buy, _, _, err := SplitAroundPivot(&route, x)
	if err != nil {
		t.Fatal(err)
	}

	wantOut := e18(1)
	amounts, err := env.sim.LegAmountsExactOut(&buy, wantOut)
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 2 {
		t.Fatalf("trace length = %d, want 2", len(amounts))
	}

	// Spending the computed input forward must cover the requested output.
	forward, err := env.sim.LegAmounts(&buy, amounts[0])
	if err != nil {
		t.Fatal(err)
	}
	if forward[1].Cmp(wantOut) < 0 {
		t.Errorf("forward replay %s < requested %s", forward[1].Dec(), wantOut.Dec())
	}
}

func TestSimulateRouteProfitable(t *testing.T) {
	env := newSimEnv(t, 0)
	route, _, xAddr := buildTwoPoolCycle(t, env)
	x, _ := env.registry.GetID(xAddr)

	pivotAmount := u64(1_000_000_000_000_000) // 1e15, small against the pools
	res, err := env.sim.SimulateRoute(0, &route, x, pivotAmount)
	if err != nil {
		t.Fatal(err)
	}

	if res.Loss {
		t.Fatal("expected a profitable cycle")
	}
	if len(res.Amounts) != 3 {
		t.Fatalf("merged trace length = %d, want 3", len(res.Amounts))
	}
	if res.Amounts[0].Cmp(pivotAmount) != 0 {
		t.Errorf("trace starts at %s, want pivot amount", res.Amounts[0].Dec())
	}
	if res.PivotIndex != 1 {
		t.Errorf("pivot index = %d, want 1", res.PivotIndex)
	}

	// Pool B pays ~10% over pool A's implied price; after two 0.25% fees
	// the cycle still clears well over 5%.
	if res.ProfitBp < 500 || res.ProfitBp > 1100 {
		t.Errorf("profit = %d bp, want roughly 9.5%%", res.ProfitBp)
	}

	last := res.Amounts[len(res.Amounts)-1]
	wantProfit := last.Clone().Sub(last, pivotAmount)
	if res.Profit.Cmp(wantProfit) != 0 {
		t.Errorf("profit = %s, want %s", res.Profit.Dec(), wantProfit.Dec())
	}
	t.Logf("amounts=[%s %s %s] profit=%s (%d bp)",
		res.Amounts[0].Dec(), res.Amounts[1].Dec(), last.Dec(), res.Profit.Dec(), res.ProfitBp)
}

func TestSimulateRouteLoss(t *testing.T) {
	env := newSimEnv(t, 0)
	uAddr, xAddr := testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 0)

	// Both pools price X at par: fees make the round trip a strict loss.
	env.addV2Pool(testAddr(0xA1), uAddr, xAddr, e18(100), e18(100))
	env.addV2Pool(testAddr(0xB1), xAddr, uAddr, e18(100), e18(100))

	route := domain.RoutePath{
		Hops:  []domain.TokenID{u, x, u},
		Pools: []gethcommon.Address{testAddr(0xA1), testAddr(0xB1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV2},
	}

	res, err := env.sim.SimulateRoute(0, &route, x, u64(1_000_000_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Loss {
		t.Fatalf("expected loss, got profit %s", res.Profit.Dec())
	}
	if !res.Profit.IsZero() {
		t.Errorf("loss result carries profit %s", res.Profit.Dec())
	}
}

func TestSimulateRouteMixedKinds(t *testing.T) {
	env := newSimEnv(t, 0)
	uAddr, xAddr := testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 0)

	env.addV2Pool(testAddr(0xA1), uAddr, xAddr, e18(100), e18(99))
	// V3 pool at parity pricing with deep liquidity pays out ~1:1.
	env.addV3Pool(testAddr(0xB1), xAddr, uAddr, Q96.Clone(), e18(1000), 500)

	route := domain.RoutePath{
		Hops:  []domain.TokenID{u, x, u},
		Pools: []gethcommon.Address{testAddr(0xA1), testAddr(0xB1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV3},
	}

	res, err := env.sim.SimulateRoute(0, &route, x, u64(1_000_000_000_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Amounts) != 3 {
		t.Fatalf("merged trace length = %d, want 3", len(res.Amounts))
	}
	t.Logf("mixed V2/V3 trace: [%s %s %s] loss=%v",
		res.Amounts[0].Dec(), res.Amounts[1].Dec(), res.Amounts[2].Dec(), res.Loss)
}

func BenchmarkSimulateRoute(b *testing.B) {
	env := newSimEnv(b, 0)
	route, _, xAddr := buildTwoPoolCycle(b, env)
	x, _ := env.registry.GetID(xAddr)
	amount := u64(1_000_000_000_000_000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := env.sim.SimulateRoute(0, &route, x, amount); err != nil {
			b.Fatal(err)
		}
	}
}
