package validator

import (
	"testing"

	"github.com/holiman/uint256"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

func TestAlignCapacityIdentity(t *testing.T) {
	// Already at the target height: the amount passes through untouched and
	// the interest formula is never consulted.
	amount := uint256.NewInt(500)
	got, err := alignCapacity(nil, unreachableCalc(t), 0, ledger.SourceInput, dao.HeaderData{Number: 100}, 100, amount)
	if err != nil {
		t.Fatalf("alignCapacity: %v", err)
	}
	if !got.Eq(amount) {
		t.Fatalf("got %s, want %s", got, amount)
	}
}

func TestAlignCapacityMonotonicity(t *testing.T) {
	for _, tc := range []struct {
		origin, target uint64
	}{
		{origin: 100, target: 99},
		{origin: 100, target: 1},
		{origin: 1, target: 0},
	} {
		_, err := alignCapacity(nil, unreachableCalc(t), 0, ledger.SourceInput, dao.HeaderData{Number: tc.target}, tc.origin, uint256.NewInt(1))
		requireCode(t, err, ERR_ALIGN)
	}
}

func TestAlignCapacityRealign(t *testing.T) {
	tx := newTestTx()
	tx.Inputs = append(tx.Inputs, wrappedCell(t, 500, 100, lockID(1)))
	tx.InputHeaders = []*dao.HeaderData{{Number: 100, AccumulatedRate: 100}}

	t.Run("formula receives the record's own origin height", func(t *testing.T) {
		var gotDeposited uint64
		var gotOccupied uint64
		calc := calcFunc(func(occupied uint64, deposit, reference dao.HeaderData, depositedNumber, originalCapacity uint64) (uint64, error) {
			gotDeposited = depositedNumber
			gotOccupied = occupied
			if reference.Number != 150 || deposit.Number != 100 {
				t.Fatalf("unexpected headers: deposit %d reference %d", deposit.Number, reference.Number)
			}
			return originalCapacity + 7, nil
		})
		got, err := alignCapacity(tx, calc, 0, ledger.SourceInput, dao.HeaderData{Number: 150}, 100, uint256.NewInt(500))
		if err != nil {
			t.Fatalf("alignCapacity: %v", err)
		}
		if !got.Eq(uint256.NewInt(507)) {
			t.Fatalf("got %s, want 507", got)
		}
		if gotDeposited != 100 {
			t.Fatalf("deposited height = %d, want 100", gotDeposited)
		}
		if gotOccupied != 61 {
			t.Fatalf("occupied = %d, want 61", gotOccupied)
		}
	})

	t.Run("uninitialized record falls back to its header height", func(t *testing.T) {
		var gotDeposited uint64
		calc := calcFunc(func(_ uint64, _, _ dao.HeaderData, depositedNumber, originalCapacity uint64) (uint64, error) {
			gotDeposited = depositedNumber
			return originalCapacity, nil
		})
		if _, err := alignCapacity(tx, calc, 0, ledger.SourceInput, dao.HeaderData{Number: 150}, 0, uint256.NewInt(500)); err != nil {
			t.Fatalf("alignCapacity: %v", err)
		}
		if gotDeposited != 100 {
			t.Fatalf("deposited height = %d, want the cell's header height 100", gotDeposited)
		}
	})

	t.Run("formula failure is an alignment failure", func(t *testing.T) {
		calc := calcFunc(func(_ uint64, _, _ dao.HeaderData, _, _ uint64) (uint64, error) {
			return 0, &ValidationError{Code: ERR_ENCODING, Msg: "boom"}
		})
		_, err := alignCapacity(tx, calc, 0, ledger.SourceInput, dao.HeaderData{Number: 150}, 100, uint256.NewInt(500))
		requireCode(t, err, ERR_ALIGN)
	})

	t.Run("amount past the capacity domain cannot be realigned", func(t *testing.T) {
		wide := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
		_, err := alignCapacity(tx, identityCalc(), 0, ledger.SourceInput, dao.HeaderData{Number: 150}, 100, wide)
		requireCode(t, err, ERR_ENCODING)
	})

	t.Run("missing header is a ledger failure", func(t *testing.T) {
		bare := newTestTx()
		bare.Inputs = append(bare.Inputs, wrappedCell(t, 500, 100, lockID(1)))
		bare.InputHeaders = []*dao.HeaderData{nil}
		_, err := alignCapacity(bare, identityCalc(), 0, ledger.SourceInput, dao.HeaderData{Number: 150}, 100, uint256.NewInt(500))
		requireCode(t, err, ERR_LEDGER_QUERY)
	})
}
