package validator

import (
	"errors"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

// ScanInputs walks the transaction's inputs once and classifies each as a
// DAO phase-2 withdrawal, a wrapped-token input, or irrelevant. Withdrawal
// amounts are captured as computed by the interest formula at the input's own
// header height; no record is realigned here.
func ScanInputs(
	q ledger.Query,
	calc dao.Calculator,
	daoID [32]byte,
	selfID [32]byte,
) ([]DaoWithdrawalRecord, []WrappedInput, error) {
	var withdrawals []DaoWithdrawalRecord
	var wrapped []WrappedInput

	for i := 0; ; i++ {
		typeID, err := q.TypeIdentifier(i, ledger.SourceInput)
		if errors.Is(err, ledger.ErrIndexOutOfBound) {
			break
		}
		if errors.Is(err, ledger.ErrItemMissing) {
			continue
		}
		if err != nil {
			return nil, nil, verr(ERR_LEDGER_QUERY, "input %d type identifier: %v", i, err)
		}

		data, err := q.CellData(i, ledger.SourceInput)
		if errors.Is(err, ledger.ErrItemMissing) {
			continue
		}
		if err != nil {
			return nil, nil, verr(ERR_LEDGER_QUERY, "input %d data: %v", i, err)
		}
		if len(data) > RecordLen {
			return nil, nil, verr(ERR_ENCODING, "input %d data: %d bytes exceeds record size", i, len(data))
		}

		switch {
		case isDaoWithdrawal(typeID, daoID, data):
			rec, err := scanWithdrawalInput(q, calc, i, data)
			if err != nil {
				return nil, nil, err
			}
			if len(withdrawals) >= MaxGroupEntries {
				return nil, nil, verr(ERR_TOO_MANY_GROUPS, "more than %d withdrawal inputs", MaxGroupEntries)
			}
			withdrawals = append(withdrawals, rec)
		case typeID == selfID:
			rec, err := DecodeWrappedRecord(data)
			if err != nil {
				return nil, nil, err
			}
			if len(wrapped) >= MaxGroupEntries {
				return nil, nil, verr(ERR_TOO_MANY_GROUPS, "more than %d wrapped-token inputs", MaxGroupEntries)
			}
			wrapped = append(wrapped, WrappedInput{Record: rec, Index: i})
		}
	}
	return withdrawals, wrapped, nil
}

// scanWithdrawalInput resolves the paired deposit header, the input's own
// header, and its capacities, then asks the interest formula for the capacity
// recoverable at the input's own recorded height.
func scanWithdrawalInput(q ledger.Query, calc dao.Calculator, i int, data []byte) (DaoWithdrawalRecord, error) {
	depositedHeight := markerHeight(data)

	depIndex, err := q.DepositHeaderIndex(i)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_LEDGER_QUERY, "input %d deposit header link: %v", i, err)
	}
	depositHeader, err := q.Header(depIndex, ledger.SourceHeaderDep)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_LEDGER_QUERY, "input %d deposit header %d: %v", i, depIndex, err)
	}
	withdrawHeader, err := q.Header(i, ledger.SourceInput)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_LEDGER_QUERY, "input %d header: %v", i, err)
	}

	occupied, err := q.OccupiedCapacity(i, ledger.SourceInput)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_ENCODING, "input %d occupied capacity: %v", i, err)
	}
	original, err := q.Capacity(i, ledger.SourceInput)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_ENCODING, "input %d capacity: %v", i, err)
	}

	amount, err := calc.Withdrawable(occupied, depositHeader, withdrawHeader, depositedHeight, original)
	if err != nil {
		return DaoWithdrawalRecord{}, verr(ERR_ALIGN, "input %d withdrawable: %v", i, err)
	}
	return DaoWithdrawalRecord{Amount: amount, Height: withdrawHeader.Number, Index: i}, nil
}
