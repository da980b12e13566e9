package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SimulatedRoute is the outcome of running one candidate route against the
// current cache snapshot. Amounts carries the full hop-by-hop trace with the
// duplicated pivot element elided: Amounts[0] is the base-token input and
// Amounts[len-1] the base-token output.
type SimulatedRoute struct {
	Route      RouteID
	PivotToken common.Address
	PivotIndex int

	BuyAmounts  []*uint256.Int
	SellAmounts []*uint256.Int
	Amounts     []*uint256.Int

	Profit   *uint256.Int
	Loss     bool
	ProfitBp int64
}

// Opportunity is the egress record handed to the downstream consumer.
type Opportunity struct {
	Route      RouteID        `json:"route"`
	Base       common.Address `json:"base"`
	PivotToken common.Address `json:"pivotToken"`
	Pools      []string       `json:"pools"`
	AmountIn   *uint256.Int   `json:"amountIn"`
	AmountOut  *uint256.Int   `json:"amountOut"`
	Profit     *uint256.Int   `json:"profit"`
	ProfitBp   int64          `json:"profitBp"`
	TriggerTx  common.Hash    `json:"triggerTx"`
	LatencyUs  int64          `json:"latencyUs"`
	DetectedAt int64          `json:"detectedAt"`
}
