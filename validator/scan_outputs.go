package validator

import (
	"errors"

	"github.com/holiman/uint256"

	"wstake.dev/wstake/ledger"
)

// OutputTables is the result of one output scan: deposit capacities and
// uninitialized wrapped amounts grouped per lock identity, and initialized
// wrapped amounts grouped per height.
type OutputTables struct {
	Deposits      LockTable
	UninitWrapped LockTable
	InitWrapped   HeightTable
}

// ScanOutputs walks the transaction's outputs once. Fresh DAO deposits and
// uninitialized wrapped-token outputs accumulate per recipient lock;
// initialized wrapped-token outputs must already sit at targetHeight — a
// mismatch can never be corrected later, so it fails immediately.
func ScanOutputs(
	q ledger.Query,
	daoID [32]byte,
	selfID [32]byte,
	targetHeight uint64,
) (*OutputTables, error) {
	tables := &OutputTables{}

	for i := 0; ; i++ {
		typeID, err := q.TypeIdentifier(i, ledger.SourceOutput)
		if errors.Is(err, ledger.ErrIndexOutOfBound) {
			break
		}
		if errors.Is(err, ledger.ErrItemMissing) {
			continue
		}
		if err != nil {
			return nil, verr(ERR_LEDGER_QUERY, "output %d type identifier: %v", i, err)
		}

		data, err := q.CellData(i, ledger.SourceOutput)
		if errors.Is(err, ledger.ErrItemMissing) {
			continue
		}
		if err != nil {
			return nil, verr(ERR_LEDGER_QUERY, "output %d data: %v", i, err)
		}
		if len(data) > RecordLen {
			return nil, verr(ERR_ENCODING, "output %d data: %d bytes exceeds record size", i, len(data))
		}

		switch {
		case isDaoDeposit(typeID, daoID, data):
			lockID, err := q.LockIdentifier(i, ledger.SourceOutput)
			if err != nil {
				return nil, verr(ERR_LEDGER_QUERY, "output %d lock identifier: %v", i, err)
			}
			capacity, err := q.Capacity(i, ledger.SourceOutput)
			if err != nil {
				return nil, verr(ERR_LEDGER_QUERY, "output %d capacity: %v", i, err)
			}
			if err := tables.Deposits.add(lockID, uint256.NewInt(capacity)); err != nil {
				return nil, err
			}
		case typeID == selfID:
			rec, err := DecodeWrappedRecord(data)
			if err != nil {
				return nil, err
			}
			if rec.Uninitialized() {
				lockID, err := q.LockIdentifier(i, ledger.SourceOutput)
				if err != nil {
					return nil, verr(ERR_LEDGER_QUERY, "output %d lock identifier: %v", i, err)
				}
				if err := tables.UninitWrapped.add(lockID, rec.Amount); err != nil {
					return nil, err
				}
			} else {
				if rec.Height != targetHeight {
					return nil, verr(ERR_OUTPUT_NOT_ALIGNED, "output %d at height %d, alignment height is %d", i, rec.Height, targetHeight)
				}
				if err := tables.InitWrapped.add(rec.Height, rec.Amount, i); err != nil {
					return nil, err
				}
			}
		}
	}
	return tables, nil
}
