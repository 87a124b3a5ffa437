package ledger

import (
	"fmt"

	"wstake.dev/wstake/dao"
)

// Cell is one ledger entry of a transaction view.
type Cell struct {
	Capacity         uint64
	OccupiedCapacity uint64
	LockID           [32]byte
	// TypeID is nil for cells without a type script.
	TypeID *[32]byte
	Data   []byte
}

// Transaction is an in-memory Query implementation holding one transaction's
// cells and the headers attached to it. The zero value is an empty
// transaction.
type Transaction struct {
	Inputs  []Cell
	Outputs []Cell
	// InputHeaders is parallel to Inputs; a nil entry means the input has no
	// attached header.
	InputHeaders []*dao.HeaderData
	HeaderDeps   []dao.HeaderData
	// DepositLinks maps a withdrawal input index to the header-dep index of
	// its paired deposit header.
	DepositLinks map[int]int
	// GroupType is the type identity whose instances among Inputs form the
	// SourceGroupInput view.
	GroupType [32]byte
}

var _ Query = (*Transaction)(nil)

// resolve maps (index, source) to the concrete input/output index and list.
// SourceGroupInput is translated to the underlying input index.
func (t *Transaction) resolve(index int, source Source) (Cell, int, Source, error) {
	if index < 0 {
		return Cell{}, 0, source, fmt.Errorf("ledger: negative index %d", index)
	}
	switch source {
	case SourceInput:
		if index >= len(t.Inputs) {
			return Cell{}, 0, source, ErrIndexOutOfBound
		}
		return t.Inputs[index], index, SourceInput, nil
	case SourceOutput:
		if index >= len(t.Outputs) {
			return Cell{}, 0, source, ErrIndexOutOfBound
		}
		return t.Outputs[index], index, SourceOutput, nil
	case SourceGroupInput:
		seen := 0
		for i, cell := range t.Inputs {
			if cell.TypeID == nil || *cell.TypeID != t.GroupType {
				continue
			}
			if seen == index {
				return cell, i, SourceInput, nil
			}
			seen++
		}
		return Cell{}, 0, source, ErrIndexOutOfBound
	default:
		return Cell{}, 0, source, fmt.Errorf("ledger: source %d does not address cells", source)
	}
}

func (t *Transaction) TypeIdentifier(index int, source Source) ([32]byte, error) {
	cell, _, _, err := t.resolve(index, source)
	if err != nil {
		return [32]byte{}, err
	}
	if cell.TypeID == nil {
		return [32]byte{}, ErrItemMissing
	}
	return *cell.TypeID, nil
}

func (t *Transaction) CellData(index int, source Source) ([]byte, error) {
	cell, _, _, err := t.resolve(index, source)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), cell.Data...), nil
}

func (t *Transaction) LockIdentifier(index int, source Source) ([32]byte, error) {
	cell, _, _, err := t.resolve(index, source)
	if err != nil {
		return [32]byte{}, err
	}
	return cell.LockID, nil
}

func (t *Transaction) Capacity(index int, source Source) (uint64, error) {
	cell, _, _, err := t.resolve(index, source)
	if err != nil {
		return 0, err
	}
	return cell.Capacity, nil
}

func (t *Transaction) OccupiedCapacity(index int, source Source) (uint64, error) {
	cell, _, _, err := t.resolve(index, source)
	if err != nil {
		return 0, err
	}
	return cell.OccupiedCapacity, nil
}

func (t *Transaction) Header(index int, source Source) (dao.HeaderData, error) {
	if source == SourceHeaderDep {
		if index < 0 || index >= len(t.HeaderDeps) {
			return dao.HeaderData{}, ErrIndexOutOfBound
		}
		return t.HeaderDeps[index], nil
	}
	_, inputIndex, resolved, err := t.resolve(index, source)
	if err != nil {
		return dao.HeaderData{}, err
	}
	if resolved != SourceInput {
		return dao.HeaderData{}, ErrItemMissing
	}
	if inputIndex >= len(t.InputHeaders) || t.InputHeaders[inputIndex] == nil {
		return dao.HeaderData{}, ErrItemMissing
	}
	return *t.InputHeaders[inputIndex], nil
}

func (t *Transaction) DepositHeaderIndex(withdrawalIndex int) (int, error) {
	depIndex, ok := t.DepositLinks[withdrawalIndex]
	if !ok {
		return 0, ErrItemMissing
	}
	if depIndex < 0 || depIndex >= len(t.HeaderDeps) {
		return 0, fmt.Errorf("ledger: deposit link for input %d points past header deps", withdrawalIndex)
	}
	return depIndex, nil
}
