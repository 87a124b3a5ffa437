package validator

import (
	"testing"

	"github.com/holiman/uint256"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

func TestScanInputsClassification(t *testing.T) {
	tx := newTestTx()
	tx.Inputs = append(tx.Inputs,
		plainCell(1000, lockID(1)),                 // no type script: skipped
		wrappedCell(t, 500, 100, lockID(2)),        // wrapped input
		daoWithdrawalCell(2000, 40, lockID(3)),     // phase-2 withdrawal
		daoDepositCell(3000, lockID(4)),            // deposit marker on an input: not a withdrawal
		wrappedCell(t, 7, 0, lockID(5)),            // uninitialized wrapped input
	)
	tx.InputHeaders = []*dao.HeaderData{nil, header(100), header(90), nil, header(60)}
	tx.DepositLinks[2] = 0
	tx.HeaderDeps = []dao.HeaderData{{Number: 40}}

	calc := calcFunc(func(occupied uint64, deposit, reference dao.HeaderData, depositedNumber, originalCapacity uint64) (uint64, error) {
		if deposit.Number != 40 || reference.Number != 90 || depositedNumber != 40 {
			t.Fatalf("unexpected formula inputs: deposit %d reference %d deposited %d", deposit.Number, reference.Number, depositedNumber)
		}
		if occupied != 102 || originalCapacity != 2000 {
			t.Fatalf("unexpected capacities: occupied %d original %d", occupied, originalCapacity)
		}
		return 2100, nil
	})

	withdrawals, wrapped, err := ScanInputs(tx, calc, testDAOID, testSelfID)
	if err != nil {
		t.Fatalf("ScanInputs: %v", err)
	}

	if len(withdrawals) != 1 {
		t.Fatalf("expected 1 withdrawal, got %d", len(withdrawals))
	}
	w := withdrawals[0]
	if w.Amount != 2100 || w.Height != 90 || w.Index != 2 {
		t.Fatalf("withdrawal = %+v, want amount 2100 height 90 index 2", w)
	}

	if len(wrapped) != 2 {
		t.Fatalf("expected 2 wrapped inputs, got %d", len(wrapped))
	}
	if !wrapped[0].Record.Amount.Eq(uint256.NewInt(500)) || wrapped[0].Record.Height != 100 || wrapped[0].Index != 1 {
		t.Fatalf("wrapped[0] = %+v", wrapped[0])
	}
	if !wrapped[1].Record.Uninitialized() || wrapped[1].Index != 4 {
		t.Fatalf("wrapped[1] = %+v", wrapped[1])
	}
}

func TestScanInputsMalformedRecord(t *testing.T) {
	self := testSelfID
	tx := newTestTx()
	tx.Inputs = append(tx.Inputs, ledger.Cell{
		Capacity: 100,
		TypeID:   &self,
		Data:     make([]byte, 16), // amount only, height missing
	})
	_, _, err := ScanInputs(tx, unreachableCalc(t), testDAOID, testSelfID)
	requireCode(t, err, ERR_ENCODING)
}

func TestScanInputsOversizedData(t *testing.T) {
	self := testSelfID
	tx := newTestTx()
	tx.Inputs = append(tx.Inputs, ledger.Cell{
		Capacity: 100,
		TypeID:   &self,
		Data:     make([]byte, RecordLen+1),
	})
	_, _, err := ScanInputs(tx, unreachableCalc(t), testDAOID, testSelfID)
	requireCode(t, err, ERR_ENCODING)
}

func TestScanInputsMissingDepositLink(t *testing.T) {
	tx := newTestTx()
	tx.Inputs = append(tx.Inputs, daoWithdrawalCell(2000, 40, lockID(1)))
	tx.InputHeaders = []*dao.HeaderData{header(90)}
	// No DepositLinks entry for input 0.
	_, _, err := ScanInputs(tx, unreachableCalc(t), testDAOID, testSelfID)
	requireCode(t, err, ERR_LEDGER_QUERY)
}

func TestScanInputsEmptyTransaction(t *testing.T) {
	withdrawals, wrapped, err := ScanInputs(newTestTx(), unreachableCalc(t), testDAOID, testSelfID)
	if err != nil {
		t.Fatalf("ScanInputs: %v", err)
	}
	if len(withdrawals) != 0 || len(wrapped) != 0 {
		t.Fatalf("expected empty results, got %d withdrawals %d wrapped", len(withdrawals), len(wrapped))
	}
}
