package router

import (
	"testing"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/domain"
)

func TestQuoteCacheHitAndVersionMiss(t *testing.T) {
	qc := NewQuoteCache()
	defer qc.Stop()

	pool := testAddr(0xA1)
	amount := e18(1)
	result := e18(2)

	if _, ok := qc.Get(pool, 100, amount, true, true); ok {
		t.Fatal("hit on empty cache")
	}

	qc.Set(pool, 100, amount, true, true, result)
	got, ok := qc.Get(pool, 100, amount, true, true)
	if !ok {
		t.Fatal("miss after Set")
	}
	if got.Cmp(result) != 0 {
		t.Errorf("cached = %s, want %s", got.Dec(), result.Dec())
	}
	// Returned value is a copy, mutating it must not poison the cache.
	got.Clear()
	again, ok := qc.Get(pool, 100, amount, true, true)
	if !ok || again.Cmp(result) != 0 {
		t.Error("cache entry corrupted by caller mutation")
	}

	// A new state version is a different key.
	if _, ok := qc.Get(pool, 101, amount, true, true); ok {
		t.Error("stale state version served")
	}
	// Direction and mode are part of the key too.
	if _, ok := qc.Get(pool, 100, amount, false, true); ok {
		t.Error("direction not keyed")
	}
	if _, ok := qc.Get(pool, 100, amount, true, false); ok {
		t.Error("exact mode not keyed")
	}
}

func TestQuoteCacheEvictionUnderPressure(t *testing.T) {
	qc := NewQuoteCache()
	defer qc.Stop()

	// Far more distinct keys than capacity; the clock must evict, not grow.
	for i := 0; i < 10_000; i++ {
		qc.Set(testAddr(byte(i%251)), int64(i), u64(uint64(i+1)), i%2 == 0, true, u64(uint64(i+2)))
	}
	if size := qc.Size(); size > 1024 {
		t.Errorf("cache size %d exceeds capacity", size)
	}
}

func TestTokenRegistryInterning(t *testing.T) {
	r := NewTokenRegistry()

	a, b := testAddr(1), testAddr(2)
	idA := r.GetOrCreate(a)
	idB := r.GetOrCreate(b)
	if idA == idB {
		t.Fatal("distinct tokens share an id")
	}
	if again := r.GetOrCreate(a); again != idA {
		t.Errorf("re-intern changed id: %d != %d", again, idA)
	}
	if got := r.GetAddress(idA); got != a {
		t.Errorf("reverse lookup = %s, want %s", got.Hex(), a.Hex())
	}
	if _, ok := r.GetID(testAddr(9)); ok {
		t.Error("unknown token resolved")
	}
	if got := r.GetAddress(domain.TokenID(999)); got != (gethcommon.Address{}) {
		t.Error("out-of-range id returned a real address")
	}
	if r.Size() != 2 {
		t.Errorf("size = %d, want 2", r.Size())
	}
}
