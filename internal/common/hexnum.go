package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// ParseU256 accepts the two numeric encodings seen on the wire: 0x-prefixed
// hex and plain decimal.
func ParseU256(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty numeric value")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex("0x" + strings.TrimLeft(s[2:], "0") + zeroIfTrimmed(s[2:]))
		if err != nil {
			return nil, fmt.Errorf("invalid hex value %q: %w", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal value %q: %w", s, err)
	}
	return v, nil
}

// uint256.FromHex rejects leading zeros, which some producers emit.
func zeroIfTrimmed(digits string) string {
	if strings.TrimLeft(digits, "0") == "" {
		return "0"
	}
	return ""
}

// ParseInt32 accepts a decimal or 0x-hex (possibly negative) tick value.
func ParseInt32(s string) (int32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty integer value")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var (
		v   int64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", s, err)
	}
	if neg {
		v = -v
	}
	// int24 range, asymmetric around zero
	if v < -8388608 || v > 8388607 {
		return 0, fmt.Errorf("tick value %d out of range", v)
	}
	return int32(v), nil
}

// ParseBigInt parses a signed decimal or 0x-hex amount.
func ParseBigInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	v := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = v.SetString(s[2:], 16)
	} else {
		_, ok = v.SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}
