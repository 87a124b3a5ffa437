package validator

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

const (
	// AmountLen is the wire size of the 128-bit little-endian amount.
	AmountLen = 16
	// HeightLen is the wire size of the 64-bit little-endian height.
	HeightLen = 8
	// RecordLen is the full wrapped-token record: amount || height.
	RecordLen = AmountLen + HeightLen
	// MarkerLen is the DAO deposit/withdrawal marker: an 8-byte field that is
	// all-zero for a fresh deposit and carries the deposited block height for
	// a phase-2 withdrawal.
	MarkerLen = 8
)

// WrappedTokenRecord is one wrapped-token cell's decoded data. Height 0 means
// the record is uninitialized: a placeholder to be paired with a
// same-transaction deposit by lock identity.
type WrappedTokenRecord struct {
	Amount *uint256.Int
	Height uint64
}

// Uninitialized reports whether the record awaits pairing with a deposit.
func (r WrappedTokenRecord) Uninitialized() bool { return r.Height == 0 }

// DecodeWrappedRecord decodes the 24-byte on-ledger layout: 16 bytes LE
// amount followed by 8 bytes LE height. Any other length is ERR_ENCODING.
func DecodeWrappedRecord(data []byte) (WrappedTokenRecord, error) {
	if len(data) != RecordLen {
		return WrappedTokenRecord{}, verr(ERR_ENCODING, "wrapped record: expected %d bytes, got %d", RecordLen, len(data))
	}
	lo := binary.LittleEndian.Uint64(data[0:8])
	hi := binary.LittleEndian.Uint64(data[8:16])
	return WrappedTokenRecord{
		Amount: &uint256.Int{lo, hi, 0, 0},
		Height: binary.LittleEndian.Uint64(data[AmountLen:RecordLen]),
	}, nil
}

// EncodeWrappedRecord produces the 24-byte on-ledger layout. Amounts wider
// than 128 bits are ERR_ENCODING.
func EncodeWrappedRecord(r WrappedTokenRecord) ([]byte, error) {
	if r.Amount == nil {
		return nil, verr(ERR_ENCODING, "wrapped record: nil amount")
	}
	if r.Amount.Gt(maxU128) {
		return nil, verr(ERR_ENCODING, "wrapped record: amount exceeds 128 bits")
	}
	out := make([]byte, RecordLen)
	binary.LittleEndian.PutUint64(out[0:8], r.Amount[0])
	binary.LittleEndian.PutUint64(out[8:16], r.Amount[1])
	binary.LittleEndian.PutUint64(out[AmountLen:RecordLen], r.Height)
	return out, nil
}

// DaoWithdrawalRecord is a phase-2 withdrawal input: the capacity recoverable
// as of the input's own header (before realignment), that header's height,
// and the input's index for later occupied-capacity reads.
type DaoWithdrawalRecord struct {
	Amount uint64
	Height uint64
	Index  int
}

// WrappedInput pairs a decoded wrapped-token input record with its input
// index so realignment can address the originating cell.
type WrappedInput struct {
	Record WrappedTokenRecord
	Index  int
}

// isDaoDeposit reports whether a cell with the given type identity and data
// is a fresh DAO deposit: DAO system identity plus an all-zero marker.
func isDaoDeposit(typeID, daoID [32]byte, data []byte) bool {
	return typeID == daoID && len(data) == MarkerLen && markerHeight(data) == 0
}

// isDaoWithdrawal reports whether the cell is a phase-2 withdrawal: DAO
// system identity plus a non-zero deposited-height marker.
func isDaoWithdrawal(typeID, daoID [32]byte, data []byte) bool {
	return typeID == daoID && len(data) == MarkerLen && markerHeight(data) != 0
}

func markerHeight(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data[:MarkerLen])
}
