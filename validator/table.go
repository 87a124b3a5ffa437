package validator

import "github.com/holiman/uint256"

// MaxGroupEntries bounds every accumulation table and scan list. Exceeding it
// rejects the transaction: a hosted validator must not grow without bound.
const MaxGroupEntries = 256

// LockGroup is one accumulated entry keyed by lock identity.
type LockGroup struct {
	LockID [32]byte
	Amount *uint256.Int
}

// LockTable accumulates amounts per lock identity with a hard entry bound.
// Linear find-or-insert; N is at most MaxGroupEntries.
type LockTable struct {
	Groups []LockGroup
}

// add merges amount into the entry for lockID, appending a new group when the
// key is unseen. Appending past MaxGroupEntries is ERR_TOO_MANY_GROUPS.
func (t *LockTable) add(lockID [32]byte, amount *uint256.Int) error {
	for i := range t.Groups {
		if t.Groups[i].LockID == lockID {
			sum, err := addU128(t.Groups[i].Amount, amount)
			if err != nil {
				return err
			}
			t.Groups[i].Amount = sum
			return nil
		}
	}
	if len(t.Groups) >= MaxGroupEntries {
		return verr(ERR_TOO_MANY_GROUPS, "more than %d lock groups", MaxGroupEntries)
	}
	t.Groups = append(t.Groups, LockGroup{LockID: lockID, Amount: amount.Clone()})
	return nil
}

// find returns the accumulated amount for lockID.
func (t *LockTable) find(lockID [32]byte) (*uint256.Int, bool) {
	for i := range t.Groups {
		if t.Groups[i].LockID == lockID {
			return t.Groups[i].Amount, true
		}
	}
	return nil, false
}

// HeightGroup is one accumulated entry keyed by block height. Index remembers
// the first contributing output so realignment can address a concrete cell.
type HeightGroup struct {
	Height uint64
	Amount *uint256.Int
	Index  int
}

// HeightTable accumulates amounts per block height with the same bound and
// merge semantics as LockTable.
type HeightTable struct {
	Groups []HeightGroup
}

func (t *HeightTable) add(height uint64, amount *uint256.Int, index int) error {
	for i := range t.Groups {
		if t.Groups[i].Height == height {
			sum, err := addU128(t.Groups[i].Amount, amount)
			if err != nil {
				return err
			}
			t.Groups[i].Amount = sum
			return nil
		}
	}
	if len(t.Groups) >= MaxGroupEntries {
		return verr(ERR_TOO_MANY_GROUPS, "more than %d height groups", MaxGroupEntries)
	}
	t.Groups = append(t.Groups, HeightGroup{Height: height, Amount: amount.Clone(), Index: index})
	return nil
}
