package store

import (
	"encoding/binary"
	"fmt"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

// Persistence format, all integers little-endian. This is an engineering
// format for snapshot storage, not an on-ledger wire format.

func encodeIndexKey(i int) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(i))
	return out
}

// encodeCell: capacity u64 | occupied u64 | lock 32 | has_type u8 | [type 32] | data_len u32 | data
func encodeCell(c ledger.Cell) []byte {
	out := make([]byte, 0, 8+8+32+1+32+4+len(c.Data))
	var tmp8 [8]byte
	var tmp4 [4]byte
	binary.LittleEndian.PutUint64(tmp8[:], c.Capacity)
	out = append(out, tmp8[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], c.OccupiedCapacity)
	out = append(out, tmp8[:]...)
	out = append(out, c.LockID[:]...)
	if c.TypeID != nil {
		out = append(out, 1)
		out = append(out, c.TypeID[:]...)
	} else {
		out = append(out, 0)
	}
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(c.Data)))
	out = append(out, tmp4[:]...)
	out = append(out, c.Data...)
	return out
}

func decodeCell(b []byte) (ledger.Cell, error) {
	const fixed = 8 + 8 + 32 + 1
	if len(b) < fixed {
		return ledger.Cell{}, fmt.Errorf("cell: truncated (%d bytes)", len(b))
	}
	var c ledger.Cell
	off := 0
	c.Capacity = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	c.OccupiedCapacity = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	copy(c.LockID[:], b[off:off+32])
	off += 32
	hasType := b[off]
	off++
	switch hasType {
	case 0:
	case 1:
		if len(b) < off+32 {
			return ledger.Cell{}, fmt.Errorf("cell: truncated type identity")
		}
		var typeID [32]byte
		copy(typeID[:], b[off:off+32])
		c.TypeID = &typeID
		off += 32
	default:
		return ledger.Cell{}, fmt.Errorf("cell: bad has_type byte %d", hasType)
	}
	if len(b) < off+4 {
		return ledger.Cell{}, fmt.Errorf("cell: truncated data length")
	}
	dataLen := int(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	if off+dataLen != len(b) {
		return ledger.Cell{}, fmt.Errorf("cell: bad data length %d", dataLen)
	}
	c.Data = append([]byte(nil), b[off:off+dataLen]...)
	return c, nil
}

// encodeHeader: number u64 | epoch u64 | accumulated_rate u64
func encodeHeader(h dao.HeaderData) []byte {
	out := make([]byte, 24)
	binary.LittleEndian.PutUint64(out[0:8], h.Number)
	binary.LittleEndian.PutUint64(out[8:16], h.Epoch)
	binary.LittleEndian.PutUint64(out[16:24], h.AccumulatedRate)
	return out
}

func decodeHeader(b []byte) (dao.HeaderData, error) {
	if len(b) != 24 {
		return dao.HeaderData{}, fmt.Errorf("header: expected 24 bytes, got %d", len(b))
	}
	return dao.HeaderData{
		Number:          binary.LittleEndian.Uint64(b[0:8]),
		Epoch:           binary.LittleEndian.Uint64(b[8:16]),
		AccumulatedRate: binary.LittleEndian.Uint64(b[16:24]),
	}, nil
}
