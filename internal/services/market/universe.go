package market

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	internalcommon "github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/domain"
)

// poolRecord is one line of the preloaded universe file. Numeric fields
// accept decimal or 0x-hex, matching the feed encoding.
type poolRecord struct {
	Address      string `json:"address"`
	Kind         string `json:"kind"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	FeeNum       uint64 `json:"feeNum"`
	FeeDen       uint64 `json:"feeDen"`
	FeePPM       uint32 `json:"feePPM"`
	Reserve0     string `json:"reserve0"`
	Reserve1     string `json:"reserve1"`
	SqrtPriceX96 string `json:"sqrtPriceX96"`
	Liquidity    string `json:"liquidity"`
	Tick         string `json:"tick"`
	TickSpacing  int32  `json:"tickSpacing"`
}

// LoadUniverse fills the state map from a pools JSONL file and returns the
// number of pools loaded and the number of lines skipped.
func LoadUniverse(path string, states *ShardedStateMap) (loaded, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		state, err := decodePoolRecord(line)
		if err != nil {
			skipped++
			continue
		}
		states.Set(state.Address, state)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, skipped, fmt.Errorf("read universe: %w", err)
	}
	return loaded, skipped, nil
}

func decodePoolRecord(line []byte) (*domain.PoolState, error) {
	var rec poolRecord
	if err := sonic.Unmarshal(line, &rec); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(rec.Address) || !common.IsHexAddress(rec.Token0) || !common.IsHexAddress(rec.Token1) {
		return nil, fmt.Errorf("invalid address fields")
	}

	state := &domain.PoolState{
		Address: common.HexToAddress(rec.Address),
		Token0:  common.HexToAddress(rec.Token0),
		Token1:  common.HexToAddress(rec.Token1),
	}

	switch rec.Kind {
	case "V2", "v2":
		state.Kind = domain.PoolKindV2
		state.FeeNum = rec.FeeNum
		state.FeeDen = rec.FeeDen
		if state.FeeDen == 0 {
			state.FeeNum = internalcommon.DefaultFeeNumV2
			state.FeeDen = internalcommon.FeeDenV2
		}
		if rec.Reserve0 != "" {
			r0, err := internalcommon.ParseU256(rec.Reserve0)
			if err != nil {
				return nil, err
			}
			state.Reserve0 = r0
		}
		if rec.Reserve1 != "" {
			r1, err := internalcommon.ParseU256(rec.Reserve1)
			if err != nil {
				return nil, err
			}
			state.Reserve1 = r1
		}
	case "V3", "v3":
		state.Kind = domain.PoolKindV3
		state.FeePPM = rec.FeePPM
		state.TickSpacing = rec.TickSpacing
		if rec.SqrtPriceX96 != "" {
			sp, err := internalcommon.ParseU256(rec.SqrtPriceX96)
			if err != nil {
				return nil, err
			}
			state.SqrtPriceX96 = sp
		}
		if rec.Liquidity != "" {
			lq, err := internalcommon.ParseU256(rec.Liquidity)
			if err != nil {
				return nil, err
			}
			state.Liquidity = lq
		}
		if rec.Tick != "" {
			tick, err := internalcommon.ParseInt32(rec.Tick)
			if err != nil {
				return nil, err
			}
			state.Tick = tick
		}
	default:
		return nil, fmt.Errorf("unknown pool kind %q", rec.Kind)
	}

	state.UpdateFlags()
	return state, nil
}
