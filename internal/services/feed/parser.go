package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/domain"
)

var (
	ErrUnknownEventType = errors.New("unknown event_type")
	ErrBadAddress       = errors.New("malformed pool address")
)

// wireEvent is the raw line envelope. Producers are inconsistent about
// numeric encodings, so flexible fields stay raw until classified: they may
// be JSON numbers, decimal strings or 0x-hex strings.
type wireEvent struct {
	EventType string `json:"event_type"`
	Address   string `json:"address"`
	TxHash    string `json:"tx_hash"`

	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`

	SqrtPriceX96 rawScalar `json:"sqrt_price_x96"`
	Liquidity    rawScalar `json:"liquidity"`
	Tick         rawScalar `json:"tick"`
	Amount0      rawScalar `json:"amount0"`
	Amount1      rawScalar `json:"amount1"`
}

// rawScalar captures a JSON value as its unquoted text.
type rawScalar string

func (r *rawScalar) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		s = ""
	}
	*r = rawScalar(s)
	return nil
}

// ParseLine decodes one feed line into a normalized event. Pool addresses
// arrive as 40 hex chars without the 0x prefix; both forms are accepted.
func ParseLine(line []byte) (*domain.PoolEvent, error) {
	var raw wireEvent
	if err := sonic.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	addr, err := parseAddress(raw.Address)
	if err != nil {
		return nil, err
	}

	ev := &domain.PoolEvent{
		Pool:       addr,
		ReceivedAt: time.Now().UnixNano(),
	}
	if raw.TxHash != "" {
		ev.Tx = gethcommon.HexToHash(raw.TxHash)
	}

	switch raw.EventType {
	case common.WireSyncV2:
		ev.Type = domain.EventSyncV2
		if ev.Reserve0, err = common.ParseU256(raw.Reserve0); err != nil {
			return nil, fmt.Errorf("reserve0: %w", err)
		}
		if ev.Reserve1, err = common.ParseU256(raw.Reserve1); err != nil {
			return nil, fmt.Errorf("reserve1: %w", err)
		}

	case common.WireSwapV3, common.WirePancakeSwapV3, common.WirePancakeSwapV3Camel:
		ev.Type = domain.EventSwapV3
		if ev.SqrtPriceX96, err = common.ParseU256(string(raw.SqrtPriceX96)); err != nil {
			return nil, fmt.Errorf("sqrt_price_x96: %w", err)
		}
		if ev.Liquidity, err = common.ParseU256(string(raw.Liquidity)); err != nil {
			return nil, fmt.Errorf("liquidity: %w", err)
		}
		if raw.Tick != "" {
			if ev.Tick, err = common.ParseInt32(string(raw.Tick)); err != nil {
				return nil, fmt.Errorf("tick: %w", err)
			}
		}
		// Swap amounts are optional; without them the event still updates
		// the cache but cannot seed an evaluation.
		if raw.Amount0 != "" {
			if ev.Amount0, err = common.ParseBigInt(string(raw.Amount0)); err != nil {
				return nil, fmt.Errorf("amount0: %w", err)
			}
		}
		if raw.Amount1 != "" {
			if ev.Amount1, err = common.ParseBigInt(string(raw.Amount1)); err != nil {
				return nil, fmt.Errorf("amount1: %w", err)
			}
		}

	default:
		return nil, ErrUnknownEventType
	}

	return ev, nil
}

func parseAddress(s string) (gethcommon.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if !gethcommon.IsHexAddress(s) {
		return gethcommon.Address{}, ErrBadAddress
	}
	return gethcommon.HexToAddress(s), nil
}
