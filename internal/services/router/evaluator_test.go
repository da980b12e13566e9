package router

import (
	"testing"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

// buildContestedCycles installs one profitable and one lossy cycle sharing
// pool A, so an event on A fans out over both.
func buildContestedCycles(t testing.TB, env *simEnv) (goodID, badID domain.RouteID, uAddr, xAddr gethcommon.Address) {
	t.Helper()
	uAddr, xAddr = testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 0)

	env.addV2Pool(testAddr(0xA1), uAddr, xAddr, e18(100), e18(99))
	env.addV2Pool(testAddr(0xB1), xAddr, uAddr, e18(100), e18(110)) // pays 1.1 U per X
	env.addV2Pool(testAddr(0xC1), xAddr, uAddr, e18(100), e18(95))  // pays 0.95 U per X

	good := domain.RoutePath{
		Hops:  []domain.TokenID{u, x, u},
		Pools: []gethcommon.Address{testAddr(0xA1), testAddr(0xB1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV2},
	}
	bad := domain.RoutePath{
		Hops:  []domain.TokenID{u, x, u},
		Pools: []gethcommon.Address{testAddr(0xA1), testAddr(0xC1)},
		Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV2},
	}

	goodID, err := env.catalog.AddRoute(good, env.states)
	if err != nil {
		t.Fatalf("add profitable route: %v", err)
	}
	badID, err = env.catalog.AddRoute(bad, env.states)
	if err != nil {
		t.Fatalf("add lossy route: %v", err)
	}
	return goodID, badID, uAddr, xAddr
}

func newTestEvaluator(env *simEnv, deadline time.Duration, minProfitBp int64) *Evaluator {
	return NewEvaluator(env.catalog, env.sim, 2, deadline, minProfitBp, false)
}

func syncEvent(pool gethcommon.Address) *domain.PoolEvent {
	return &domain.PoolEvent{
		Type:       domain.EventSyncV2,
		Pool:       pool,
		ReceivedAt: time.Now().UnixNano(),
	}
}

func TestEvaluateEventPicksProfitableRoute(t *testing.T) {
	env := newSimEnv(t, 0)
	goodID, _, _, xAddr := buildContestedCycles(t, env)
	eval := newTestEvaluator(env, time.Second, 10)

	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xA1)), pivot)

	if count != 2 {
		t.Errorf("candidates = %d, want 2", count)
	}
	if best == nil {
		t.Fatal("no winner for a clearly profitable event")
	}
	if best.Route != goodID {
		t.Errorf("winner = route %d, want %d", best.Route, goodID)
	}
	if best.Loss || best.Profit.IsZero() {
		t.Error("winner carries no profit")
	}
	t.Logf("winner route=%d profit=%s (%d bp)", best.Route, best.Profit.Dec(), best.ProfitBp)
}

func TestEvaluateEventSinglePoolEvent(t *testing.T) {
	env := newSimEnv(t, 0)
	goodID, _, _, xAddr := buildContestedCycles(t, env)
	eval := newTestEvaluator(env, time.Second, 10)

	// Pool B is only on the profitable route.
	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xB1)), pivot)

	if count != 1 {
		t.Errorf("candidates = %d, want 1", count)
	}
	if best == nil || best.Route != goodID {
		t.Fatalf("best = %+v, want route %d", best, goodID)
	}
}

func TestEvaluateEventAllLossy(t *testing.T) {
	env := newSimEnv(t, 0)
	_, _, _, xAddr := buildContestedCycles(t, env)
	eval := newTestEvaluator(env, time.Second, 10)

	// Pool C only sits on the lossy route.
	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xC1)), pivot)

	if count != 1 {
		t.Errorf("candidates = %d, want 1", count)
	}
	if best != nil {
		t.Fatalf("lossy cycle produced a winner: %+v", best)
	}
}

func TestEvaluateEventProfitFloor(t *testing.T) {
	env := newSimEnv(t, 0)
	_, _, _, xAddr := buildContestedCycles(t, env)

	// The cycle clears ~970 bp; a floor above that must suppress it.
	eval := newTestEvaluator(env, time.Second, 5000)
	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, _ := eval.EvaluateEvent(syncEvent(testAddr(0xA1)), pivot)
	if best != nil {
		t.Fatalf("floor of 5000 bp let through %d bp", best.ProfitBp)
	}
}

func TestEvaluateEventUnknownToken(t *testing.T) {
	env := newSimEnv(t, 0)
	buildContestedCycles(t, env)
	eval := newTestEvaluator(env, time.Second, 10)

	pivot := domain.Pivot{Token: testAddr(0xEE), Amount: u64(1000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xA1)), pivot)
	if best != nil || count != 0 {
		t.Fatalf("unknown pivot token: best=%v count=%d", best, count)
	}
}

func TestEvaluateEventPoolOffCatalog(t *testing.T) {
	env := newSimEnv(t, 0)
	_, _, _, xAddr := buildContestedCycles(t, env)
	eval := newTestEvaluator(env, time.Second, 10)

	pivot := domain.Pivot{Token: xAddr, Amount: u64(1000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xDD)), pivot)
	if best != nil || count != 0 {
		t.Fatalf("uncatalogued pool: best=%v count=%d", best, count)
	}
}

func TestEvaluateEventExpiredDeadline(t *testing.T) {
	env := newSimEnv(t, 0)
	_, _, _, xAddr := buildContestedCycles(t, env)

	// A deadline in the past skips every candidate.
	eval := newTestEvaluator(env, -time.Millisecond, 10)
	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, count := eval.EvaluateEvent(syncEvent(testAddr(0xA1)), pivot)
	if best != nil {
		t.Fatalf("expired deadline still produced route %d", best.Route)
	}
	if count == 0 {
		t.Error("candidates should still be collected")
	}
}

// newSlowEnv builds a sim whose quotes pass through a fixed delay, so a
// deadline can land mid-evaluation.
func newSlowEnv(t *testing.T, perQuote time.Duration) *simEnv {
	t.Helper()
	env := &simEnv{
		states:   market.NewShardedStateMap(),
		safety:   market.NewSafetyTable(),
		registry: NewTokenRegistry(),
	}
	env.catalog = NewCatalog(env.registry, env.safety)

	mreg := market.NewDefaultMarketRegistry()
	mreg.RegisterQuoter(NewV2Quoter())
	slow := func(state *domain.PoolState, amount *uint256.Int, zeroForOne, exactIn bool) (*uint256.Int, error) {
		time.Sleep(perQuote)
		return mreg.GetQuote(state, amount, zeroForOne, exactIn)
	}
	env.sim = NewSimulator(env.states, env.safety, env.registry, slow, 0)
	t.Cleanup(env.sim.Stop)
	return env
}

func TestEvaluateEventDeadlineTruncation(t *testing.T) {
	const (
		sellPools = 120
		perQuote  = 5 * time.Millisecond
		deadline  = 100 * time.Millisecond
	)
	env := newSlowEnv(t, perQuote)
	uAddr, xAddr := testAddr(1), testAddr(2)
	u := env.safeToken(uAddr, 0)
	x := env.safeToken(xAddr, 0)

	// One shared buy pool and many parallel sell pools, all profitable, so
	// every route fans out from an event on the shared pool.
	shared := testAddr(0xA1)
	env.addV2Pool(shared, uAddr, xAddr, e18(100), e18(99))
	for i := 0; i < sellPools; i++ {
		var pool gethcommon.Address
		pool[18] = byte(i + 1)
		pool[19] = 0xF0
		env.addV2Pool(pool, xAddr, uAddr, e18(100), e18(110))
		route := domain.RoutePath{
			Hops:  []domain.TokenID{u, x, u},
			Pools: []gethcommon.Address{shared, pool},
			Kinds: []domain.PoolKind{domain.PoolKindV2, domain.PoolKindV2},
		}
		if _, err := env.catalog.AddRoute(route, env.states); err != nil {
			t.Fatalf("route %d: %v", i, err)
		}
	}

	eval := NewEvaluator(env.catalog, env.sim, 2, deadline, 10, false)
	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}

	start := time.Now()
	best, count := eval.EvaluateEvent(syncEvent(shared), pivot)
	elapsed := time.Since(start)

	// 120 candidates at 5ms each over 2 workers is ~300ms uncapped; the
	// deadline must hand back the best result seen so far well before that.
	if elapsed > 2*deadline {
		t.Errorf("evaluation took %v, want <= %v", elapsed, 2*deadline)
	}
	if count != sellPools {
		t.Errorf("candidates = %d, want %d", count, sellPools)
	}
	if best == nil {
		t.Fatal("no winner despite profitable candidates simulated before the deadline")
	}
	if best.Loss || best.ProfitBp < 10 {
		t.Errorf("winner not profitable: route=%d bp=%d", best.Route, best.ProfitBp)
	}
	t.Logf("elapsed=%v winner route=%d (%d bp)", elapsed, best.Route, best.ProfitBp)
}

func TestEvaluatorRefineNeverWorsens(t *testing.T) {
	env := newSimEnv(t, 0)
	goodID, _, _, xAddr := buildContestedCycles(t, env)
	eval := NewEvaluator(env.catalog, env.sim, 2, time.Second, 10, true)

	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	best, _ := eval.EvaluateEvent(syncEvent(testAddr(0xB1)), pivot)
	if best == nil || best.Route != goodID {
		t.Fatalf("best = %+v, want route %d", best, goodID)
	}

	baseline := newTestEvaluator(env, time.Second, 10)
	seed, _ := baseline.EvaluateEvent(syncEvent(testAddr(0xB1)), pivot)
	if seed == nil {
		t.Fatal("baseline evaluation failed")
	}
	if best.Profit.Cmp(seed.Profit) < 0 {
		t.Errorf("refined profit %s below seed %s", best.Profit.Dec(), seed.Profit.Dec())
	}
	t.Logf("seed=%s refined=%s", seed.Profit.Dec(), best.Profit.Dec())
}

func BenchmarkEvaluateEvent(b *testing.B) {
	env := newSimEnv(b, 0)
	_, _, _, xAddr := buildContestedCycles(b, env)
	eval := newTestEvaluator(env, time.Second, 10)

	pivot := domain.Pivot{Token: xAddr, Amount: u64(1_000_000_000_000_000)}
	ev := syncEvent(testAddr(0xA1))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.EvaluateEvent(ev, pivot)
	}
}
