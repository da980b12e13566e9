package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/common"
)

// BaseToken is a quote asset the engine opens and closes cycles with.
// Configured as SYMBOL:0xADDRESS:DECIMALS[:stable] entries.
type BaseToken struct {
	Symbol   string
	Address  gethcommon.Address
	Decimals uint8
	Stable   bool
}

type EngineConfig struct {
	BaseTokens []BaseToken

	// MinProfitBp is the minimum net profit, in basis points of the input,
	// for an opportunity to be emitted.
	MinProfitBp int64

	// SlippageBp is the per-hop haircut applied after pool math.
	SlippageBp uint16

	// MaxHops bounds route length (pools per cycle), 2..4.
	MaxHops int

	// EvaluatorWorkers caps the parallel fan-out per event. 0 = NumCPU/2.
	EvaluatorWorkers int

	// EvalDeadline bounds one event's evaluation wall time.
	EvalDeadline time.Duration

	// OpportunityBuffer sizes the egress channel.
	OpportunityBuffer int

	// RefineInput enables golden-section sizing of the buy-leg input.
	RefineInput bool

	PoolsPath       string
	TokenSafetyPath string
	JournalPath     string
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	raw := common.GetEnvListOrDefault("BASE_TOKENS", nil)
	for _, entry := range raw {
		bt, err := parseBaseToken(entry)
		if err != nil {
			return err
		}
		c.BaseTokens = append(c.BaseTokens, bt)
	}

	c.MinProfitBp = int64(common.GetEnvIntOrDefault("MIN_PROFIT_BP", 10))
	c.SlippageBp = uint16(common.GetEnvIntOrDefault("SLIPPAGE_BP", common.DefaultSlipBp))
	c.MaxHops = common.GetEnvIntOrDefault("MAX_HOPS", 3)
	c.EvaluatorWorkers = common.GetEnvIntOrDefault("EVALUATOR_WORKERS", 0)
	c.EvalDeadline = time.Duration(common.GetEnvIntOrDefault("EVAL_DEADLINE_MS", 50)) * time.Millisecond
	c.OpportunityBuffer = common.GetEnvIntOrDefault("OPPORTUNITY_BUFFER", 1024)
	c.RefineInput = common.GetEnvBoolOrDefault("REFINE_INPUT", false)
	c.PoolsPath = common.GetEnvOrDefault("POOLS_PATH", "./data/pools.jsonl")
	c.TokenSafetyPath = common.GetEnvOrDefault("TOKEN_SAFETY_PATH", "./data/token_tax.jsonl")
	c.JournalPath = common.GetEnvOrDefault("JOURNAL_PATH", "./data/opportunities.jsonl")
	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if len(c.BaseTokens) == 0 {
		return errors.New("engine config: at least one base token required")
	}
	if c.MaxHops < 2 || c.MaxHops > 4 {
		return errors.New("engine config: MAX_HOPS must be in [2,4]")
	}
	if c.SlippageBp >= common.BasisPointDenom {
		return errors.New("engine config: SLIPPAGE_BP out of range")
	}
	if c.EvalDeadline <= 0 {
		return errors.New("engine config: EVAL_DEADLINE_MS must be positive")
	}
	return nil
}

func (c *EngineConfig) Workers() int {
	if c.EvaluatorWorkers > 0 {
		return c.EvaluatorWorkers
	}
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

func parseBaseToken(entry string) (BaseToken, error) {
	parts := strings.Split(entry, ":")
	if len(parts) < 3 {
		return BaseToken{}, fmt.Errorf("engine config: malformed base token %q", entry)
	}
	if !gethcommon.IsHexAddress(parts[1]) {
		return BaseToken{}, fmt.Errorf("engine config: invalid base token address %q", parts[1])
	}
	dec, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return BaseToken{}, fmt.Errorf("engine config: invalid decimals in %q: %w", entry, err)
	}
	bt := BaseToken{
		Symbol:   parts[0],
		Address:  gethcommon.HexToAddress(parts[1]),
		Decimals: uint8(dec),
	}
	if len(parts) > 3 && parts[3] == "stable" {
		bt.Stable = true
	}
	return bt, nil
}
