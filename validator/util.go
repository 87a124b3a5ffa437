package validator

import (
	"github.com/holiman/uint256"
)

// maxU128 is the largest value of the 128-bit amount domain.
var maxU128 = &uint256.Int{^uint64(0), ^uint64(0), 0, 0}

// addU128 returns a+b, rejecting sums past 2^128-1. Operands are themselves
// bounded to 128 bits, so the 256-bit add cannot wrap.
func addU128(a, b *uint256.Int) (*uint256.Int, error) {
	sum := new(uint256.Int).Add(a, b)
	if sum.Gt(maxU128) {
		return nil, verr(ERR_AMOUNT_OVERFLOW, "u128 accumulation overflow")
	}
	return sum, nil
}
