package externalmatch

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const MaxDecimals = 18

// AmountToAtoms converts a human-readable token amount to its atomic unit
// representation, e.g. 30 USDC with 6 decimals becomes 30_000_000. Precision
// beyond the token's decimals is truncated.
func AmountToAtoms(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("amount must be positive, got: %s", amount)
	}
	if decimals < 0 || decimals > MaxDecimals {
		return 0, fmt.Errorf("decimals must be between 0 and %d, got: %d", MaxDecimals, decimals)
	}

	atoms := amount.Shift(decimals).Truncate(0).BigInt()
	if !atoms.IsUint64() {
		return 0, fmt.Errorf("amount too large: %s", atoms.String())
	}
	if atoms.Sign() <= 0 {
		return 0, fmt.Errorf("amount %s truncates to zero at %d decimals", amount, decimals)
	}

	return atoms.Uint64(), nil
}
