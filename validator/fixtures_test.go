package validator

import (
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

var (
	testDAOID  = [32]byte{0xda, 0x0d, 0xa0}
	testSelfID = [32]byte{0x5e, 0x1f}
)

// calcFunc adapts a function to dao.Calculator.
type calcFunc func(occupied uint64, deposit, reference dao.HeaderData, depositedNumber, originalCapacity uint64) (uint64, error)

func (f calcFunc) Withdrawable(occupied uint64, deposit, reference dao.HeaderData, depositedNumber, originalCapacity uint64) (uint64, error) {
	return f(occupied, deposit, reference, depositedNumber, originalCapacity)
}

// identityCalc returns the original capacity untouched: no interest.
func identityCalc() dao.Calculator {
	return calcFunc(func(_ uint64, _, _ dao.HeaderData, _, originalCapacity uint64) (uint64, error) {
		return originalCapacity, nil
	})
}

// unreachableCalc fails the test if the interest formula is ever consulted.
func unreachableCalc(t *testing.T) dao.Calculator {
	t.Helper()
	return calcFunc(func(_ uint64, _, _ dao.HeaderData, _, _ uint64) (uint64, error) {
		t.Fatal("interest formula must not be invoked")
		return 0, nil
	})
}

func lockID(b byte) [32]byte {
	var out [32]byte
	out[0] = b
	return out
}

func mustEncodeRecord(t *testing.T, amount uint64, height uint64) []byte {
	t.Helper()
	data, err := EncodeWrappedRecord(WrappedTokenRecord{Amount: uint256.NewInt(amount), Height: height})
	if err != nil {
		t.Fatalf("EncodeWrappedRecord: %v", err)
	}
	return data
}

func wrappedCell(t *testing.T, amount, height uint64, lock [32]byte) ledger.Cell {
	t.Helper()
	self := testSelfID
	return ledger.Cell{
		Capacity:         amount,
		OccupiedCapacity: 61,
		LockID:           lock,
		TypeID:           &self,
		Data:             mustEncodeRecord(t, amount, height),
	}
}

func daoMarker(height uint64) []byte {
	out := make([]byte, MarkerLen)
	binary.LittleEndian.PutUint64(out, height)
	return out
}

func daoDepositCell(capacity uint64, lock [32]byte) ledger.Cell {
	daoID := testDAOID
	return ledger.Cell{
		Capacity:         capacity,
		OccupiedCapacity: 102,
		LockID:           lock,
		TypeID:           &daoID,
		Data:             daoMarker(0),
	}
}

func daoWithdrawalCell(capacity, depositedHeight uint64, lock [32]byte) ledger.Cell {
	daoID := testDAOID
	return ledger.Cell{
		Capacity:         capacity,
		OccupiedCapacity: 102,
		LockID:           lock,
		TypeID:           &daoID,
		Data:             daoMarker(depositedHeight),
	}
}

func plainCell(capacity uint64, lock [32]byte) ledger.Cell {
	return ledger.Cell{Capacity: capacity, OccupiedCapacity: 61, LockID: lock}
}

// newTestTx wires the group type so SourceGroupInput sees the validator's own
// inputs.
func newTestTx() *ledger.Transaction {
	return &ledger.Transaction{
		GroupType:    testSelfID,
		DepositLinks: map[int]int{},
	}
}

func header(number uint64) *dao.HeaderData {
	return &dao.HeaderData{Number: number}
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if got := CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}
