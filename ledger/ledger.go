// Package ledger defines the query surface a hosted validator uses to read a
// transaction's cells and headers, and an in-memory Transaction view
// implementing it for tests, tooling, and the snapshot store.
package ledger

import (
	"errors"

	"wstake.dev/wstake/dao"
)

// Source selects which cell list of the transaction an index addresses.
type Source int

const (
	SourceInput Source = iota
	SourceOutput
	SourceHeaderDep
	// SourceGroupInput addresses only the inputs whose type identifier equals
	// the running validator's own identity, in input order.
	SourceGroupInput
)

// ErrIndexOutOfBound signals end-of-list: no entry exists at the index.
var ErrIndexOutOfBound = errors.New("ledger: index out of bound")

// ErrItemMissing signals that the entry exists but the requested field does
// not apply to it (e.g. a cell without a type script, an input without an
// attached header).
var ErrItemMissing = errors.New("ledger: item missing")

// Query is the read-only ledger collaborator. Every call is synchronous and
// returns either the requested datum, one of the two sentinel statuses above,
// or a hard failure.
type Query interface {
	// TypeIdentifier returns the 32-byte identity of the cell's type script,
	// or ErrItemMissing when the cell has none.
	TypeIdentifier(index int, source Source) ([32]byte, error)
	// CellData returns the cell's data payload.
	CellData(index int, source Source) ([]byte, error)
	// LockIdentifier returns the 32-byte identity of the cell's lock script.
	LockIdentifier(index int, source Source) ([32]byte, error)
	// Capacity returns the cell's native-asset capacity.
	Capacity(index int, source Source) (uint64, error)
	// OccupiedCapacity returns the capacity consumed by the cell itself.
	OccupiedCapacity(index int, source Source) (uint64, error)
	// Header returns the decoded header metadata attached to the entry, or
	// ErrItemMissing when none is attached.
	Header(index int, source Source) (dao.HeaderData, error)
	// DepositHeaderIndex maps a phase-2 withdrawal input to the header-dep
	// index of its paired deposit header.
	DepositHeaderIndex(withdrawalIndex int) (int, error)
}
