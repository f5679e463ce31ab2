package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	EtherDecimals = 18 // 1 ether = 10^18 wei

	// MaxAmountBits bounds parsed amounts to an EVM uint256.
	MaxAmountBits = 256
)

// WeiToEther converts wei to an ether string without float precision loss.
// The result always has a fractional part, e.g. 0 -> "0.0", 10^17 -> "0.1".
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return formatWithDecimals(wei, EtherDecimals)
}

// EtherToWei converts an ether string to wei without float precision loss.
// Amounts with more than 18 fractional digits are rejected rather than rounded.
func EtherToWei(ether string) (*big.Int, error) {
	return parseWithDecimals(ether, EtherDecimals)
}

// formatWithDecimals shifts value right by decimals places
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value *big.Int, decimals int32) string {
	s := decimal.NewFromBigInt(value, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// parseWithDecimals converts a decimal string to an integer amount of the
// smallest unit.
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}

	// Exponent notation would let a short string expand into a huge integer
	if strings.ContainsAny(s, "eE") {
		return nil, errors.New("exponent notation is not allowed")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal format: %w", err)
	}
	if d.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount has more than %d decimal places", decimals)
	}
	v := shifted.BigInt()
	if v.BitLen() > MaxAmountBits {
		return nil, fmt.Errorf("amount exceeds %d bits", MaxAmountBits)
	}
	return v, nil
}
