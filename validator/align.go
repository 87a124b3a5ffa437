package validator

import (
	"github.com/holiman/uint256"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

// alignCapacity normalizes an amount recorded at originHeight to the target
// header's height. This is the only place the interest formula is invoked
// outside the input scan, so every amount entering the final equations is
// expressed at one common height.
//
// The identity case returns the amount unchanged. A target older than the
// origin is ERR_ALIGN: alignment heights only move forward. Otherwise the
// originating cell's occupied capacity and header feed the interest formula;
// an uninitialized record (originHeight 0) uses its own header's height as
// the effective deposit height.
func alignCapacity(
	q ledger.Query,
	calc dao.Calculator,
	index int,
	source ledger.Source,
	target dao.HeaderData,
	originHeight uint64,
	originAmount *uint256.Int,
) (*uint256.Int, error) {
	if target.Number == originHeight {
		return originAmount, nil
	}
	if target.Number < originHeight {
		return nil, verr(ERR_ALIGN, "cell %d recorded at height %d, alignment height %d is older", index, originHeight, target.Number)
	}

	occupied, err := q.OccupiedCapacity(index, source)
	if err != nil {
		return nil, verr(ERR_ENCODING, "cell %d occupied capacity: %v", index, err)
	}
	depositHeader, err := q.Header(index, source)
	if err != nil {
		return nil, verr(ERR_LEDGER_QUERY, "cell %d header: %v", index, err)
	}
	depositedHeight := originHeight
	if depositedHeight == 0 {
		depositedHeight = depositHeader.Number
	}
	if !originAmount.IsUint64() {
		return nil, verr(ERR_ENCODING, "cell %d amount exceeds capacity domain", index)
	}

	aligned, err := calc.Withdrawable(occupied, depositHeader, target, depositedHeight, originAmount.Uint64())
	if err != nil {
		return nil, verr(ERR_ALIGN, "cell %d realign %d -> %d: %v", index, originHeight, target.Number, err)
	}
	return uint256.NewInt(aligned), nil
}
