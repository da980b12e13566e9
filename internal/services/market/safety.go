package market

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// SafetyTable is the per-token screening table. It is built once during
// preloading and read-only afterwards, so lookups are lock-free.
type SafetyTable struct {
	tokens map[common.Address]domain.TokenSafety
}

func NewSafetyTable() *SafetyTable {
	return &SafetyTable{tokens: make(map[common.Address]domain.TokenSafety)}
}

func (t *SafetyTable) Put(token common.Address, s domain.TokenSafety) {
	t.tokens[token] = s
}

func (t *SafetyTable) Lookup(token common.Address) (domain.TokenSafety, bool) {
	s, ok := t.tokens[token]
	return s, ok
}

// Tradable reports whether a token passed screening. Tokens never screened
// are not tradable.
func (t *SafetyTable) Tradable(token common.Address) bool {
	s, ok := t.tokens[token]
	return ok && s.Tradable()
}

func (t *SafetyTable) TransferTaxBp(token common.Address) uint16 {
	return t.tokens[token].TransferTaxBp
}

func (t *SafetyTable) Len() int {
	return len(t.tokens)
}

// taxRecord mirrors the screening tool's JSONL output. Taxes are basis
// points of 10_000.
type taxRecord struct {
	Token             string `json:"token"`
	BuyTax            uint32 `json:"buyTax"`
	SellTax           uint32 `json:"sellTax"`
	TransferTax       uint32 `json:"transferTax"`
	Decimals          uint8  `json:"decimals"`
	SimulationSuccess bool   `json:"simulationSuccess"`
}

// LoadSafetyTable reads a token screening JSONL file. A token whose
// simulation failed is recorded as a honeypot: the screen could not prove it
// sellable.
func LoadSafetyTable(path string) (*SafetyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open safety table: %w", err)
	}
	defer f.Close()

	table := NewSafetyTable()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec taxRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			continue
		}
		if !common.IsHexAddress(rec.Token) {
			continue
		}
		tax := rec.TransferTax
		if rec.SellTax > tax {
			tax = rec.SellTax
		}
		if tax > 0xFFFF {
			tax = 0xFFFF
		}
		table.Put(common.HexToAddress(rec.Token), domain.TokenSafety{
			Honeypot:      !rec.SimulationSuccess,
			TransferTaxBp: uint16(tax),
			Decimals:      rec.Decimals,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read safety table: %w", err)
	}
	return table, nil
}
