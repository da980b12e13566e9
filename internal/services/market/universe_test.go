package market

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/domain"
)

func TestLoadUniverse(t *testing.T) {
	v2 := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	v2NoFee := "0xabababababababababababababababababababab"
	v3 := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	t0 := "0x1111111111111111111111111111111111111111"
	t1 := "0x2222222222222222222222222222222222222222"

	content := `{"address":"` + v2 + `","kind":"V2","token0":"` + t0 + `","token1":"` + t1 + `","feeNum":9970,"feeDen":10000,"reserve0":"1000000","reserve1":"0x1e8480"}
{"address":"` + v2NoFee + `","kind":"v2","token0":"` + t0 + `","token1":"` + t1 + `","reserve0":"5","reserve1":"5"}
{"address":"` + v3 + `","kind":"V3","token0":"` + t0 + `","token1":"` + t1 + `","feePPM":500,"sqrtPriceX96":"79228162514264337593543950336","liquidity":"1000000000","tick":"-120","tickSpacing":10}
{"address":"` + v2 + `","kind":"V9","token0":"` + t0 + `","token1":"` + t1 + `"}
{"address":"not-an-address","kind":"V2","token0":"` + t0 + `","token1":"` + t1 + `"}
garbage line
`
	path := writeTempFile(t, "pools.jsonl", content)

	states := NewShardedStateMap()
	loaded, skipped, err := LoadUniverse(path, states)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != 3 || skipped != 3 {
		t.Fatalf("loaded=%d skipped=%d, want 3/3", loaded, skipped)
	}

	st, ok := states.Get(common.HexToAddress(v2))
	if !ok {
		t.Fatal("V2 pool missing")
	}
	if st.Kind != domain.PoolKindV2 || st.FeeNum != 9970 || st.FeeDen != 10000 {
		t.Errorf("V2 fees = %d/%d", st.FeeNum, st.FeeDen)
	}
	// reserve1 was hex-encoded: 0x1e8480 == 2_000_000
	if st.Reserve0.Uint64() != 1_000_000 || st.Reserve1.Uint64() != 2_000_000 {
		t.Errorf("V2 reserves = %s/%s", st.Reserve0.Dec(), st.Reserve1.Dec())
	}
	if !st.IsReady() {
		t.Error("complete V2 pool not ready")
	}

	// Missing fee pair falls back to the 0.25% default.
	st, _ = states.Get(common.HexToAddress(v2NoFee))
	if st.FeeNum != 9975 || st.FeeDen != 10000 {
		t.Errorf("default fees = %d/%d, want 9975/10000", st.FeeNum, st.FeeDen)
	}

	st, ok = states.Get(common.HexToAddress(v3))
	if !ok {
		t.Fatal("V3 pool missing")
	}
	if st.Kind != domain.PoolKindV3 || st.FeePPM != 500 || st.Tick != -120 || st.TickSpacing != 10 {
		t.Errorf("V3 state = feePPM %d tick %d spacing %d", st.FeePPM, st.Tick, st.TickSpacing)
	}
	if !st.IsReady() {
		t.Error("complete V3 pool not ready")
	}
}

func TestLoadUniverseMissingFile(t *testing.T) {
	states := NewShardedStateMap()
	if _, _, err := LoadUniverse("/nonexistent/pools.jsonl", states); err == nil {
		t.Fatal("expected error for missing file")
	}
}
