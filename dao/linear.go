package dao

import (
	"fmt"

	"github.com/holiman/uint256"
)

// LinearCalculator is a reference Calculator for fixtures and tooling. It
// accrues interest on the free (non-occupied) part of the deposit
// proportionally to the accumulated-rate ratio between the reference and
// deposit headers:
//
//	withdrawable = occupied + (original - occupied) * reference.AR / deposit.AR
//
// When the deposit header carries no rate information (AccumulatedRate == 0)
// the original capacity is returned unchanged.
type LinearCalculator struct{}

func (LinearCalculator) Withdrawable(
	occupiedCapacity uint64,
	deposit HeaderData,
	reference HeaderData,
	depositedNumber uint64,
	originalCapacity uint64,
) (uint64, error) {
	if reference.Number < depositedNumber {
		return 0, fmt.Errorf("dao: reference block %d older than deposit block %d", reference.Number, depositedNumber)
	}
	if originalCapacity < occupiedCapacity {
		return 0, fmt.Errorf("dao: occupied capacity %d exceeds original capacity %d", occupiedCapacity, originalCapacity)
	}
	if deposit.AccumulatedRate == 0 {
		return originalCapacity, nil
	}
	if reference.AccumulatedRate < deposit.AccumulatedRate {
		return 0, fmt.Errorf("dao: accumulated rate decreased between blocks %d and %d", deposit.Number, reference.Number)
	}

	counted := new(uint256.Int).SetUint64(originalCapacity - occupiedCapacity)
	counted.Mul(counted, new(uint256.Int).SetUint64(reference.AccumulatedRate))
	counted.Div(counted, new(uint256.Int).SetUint64(deposit.AccumulatedRate))

	withdrawable := new(uint256.Int).SetUint64(occupiedCapacity)
	withdrawable.Add(withdrawable, counted)
	if !withdrawable.IsUint64() {
		return 0, fmt.Errorf("dao: withdrawable capacity overflows u64")
	}
	return withdrawable.Uint64(), nil
}
