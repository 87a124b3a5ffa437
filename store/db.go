// Package store persists one transaction snapshot — cells, headers, deposit
// links, and the validator group identity — so a transaction can be imported
// once and verified out-of-process.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

var (
	bucketInputs       = []byte("input_cells")
	bucketOutputs      = []byte("output_cells")
	bucketInputHeaders = []byte("input_headers")
	bucketHeaderDeps   = []byte("header_deps")
	bucketDepositLinks = []byte("deposit_links")
	bucketMeta         = []byte("meta")
)

var allBuckets = [][]byte{
	bucketInputs, bucketOutputs, bucketInputHeaders,
	bucketHeaderDeps, bucketDepositLinks, bucketMeta,
}

var (
	metaInputCount     = []byte("input_count")
	metaOutputCount    = []byte("output_count")
	metaHeaderDepCount = []byte("header_dep_count")
	metaGroupType      = []byte("group_type")
)

type DB struct {
	db *bolt.DB
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path required")
	}
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	d := &DB{db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// ImportTransaction replaces any previously stored snapshot.
func (d *DB) ImportTransaction(snapshot *ledger.Transaction) error {
	if snapshot == nil {
		return fmt.Errorf("store: nil transaction")
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		inputs := tx.Bucket(bucketInputs)
		for i, cell := range snapshot.Inputs {
			if err := inputs.Put(encodeIndexKey(i), encodeCell(cell)); err != nil {
				return err
			}
		}
		outputs := tx.Bucket(bucketOutputs)
		for i, cell := range snapshot.Outputs {
			if err := outputs.Put(encodeIndexKey(i), encodeCell(cell)); err != nil {
				return err
			}
		}
		inputHeaders := tx.Bucket(bucketInputHeaders)
		for i, h := range snapshot.InputHeaders {
			if h == nil {
				continue
			}
			if err := inputHeaders.Put(encodeIndexKey(i), encodeHeader(*h)); err != nil {
				return err
			}
		}
		headerDeps := tx.Bucket(bucketHeaderDeps)
		for i, h := range snapshot.HeaderDeps {
			if err := headerDeps.Put(encodeIndexKey(i), encodeHeader(h)); err != nil {
				return err
			}
		}
		links := tx.Bucket(bucketDepositLinks)
		for inputIndex, depIndex := range snapshot.DepositLinks {
			if err := links.Put(encodeIndexKey(inputIndex), encodeIndexKey(depIndex)); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(metaInputCount, encodeIndexKey(len(snapshot.Inputs))); err != nil {
			return err
		}
		if err := meta.Put(metaOutputCount, encodeIndexKey(len(snapshot.Outputs))); err != nil {
			return err
		}
		if err := meta.Put(metaHeaderDepCount, encodeIndexKey(len(snapshot.HeaderDeps))); err != nil {
			return err
		}
		return meta.Put(metaGroupType, snapshot.GroupType[:])
	})
}

// LoadTransaction reassembles the stored snapshot. The second return is false
// when nothing has been imported yet.
func (d *DB) LoadTransaction() (*ledger.Transaction, bool, error) {
	var snapshot *ledger.Transaction
	err := d.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		groupType := meta.Get(metaGroupType)
		if groupType == nil {
			return nil
		}
		if len(groupType) != 32 {
			return fmt.Errorf("store: bad group_type length %d", len(groupType))
		}

		inputCount, err := readCount(meta, metaInputCount)
		if err != nil {
			return err
		}
		outputCount, err := readCount(meta, metaOutputCount)
		if err != nil {
			return err
		}
		headerDepCount, err := readCount(meta, metaHeaderDepCount)
		if err != nil {
			return err
		}

		out := &ledger.Transaction{
			Inputs:       make([]ledger.Cell, inputCount),
			Outputs:      make([]ledger.Cell, outputCount),
			InputHeaders: make([]*dao.HeaderData, inputCount),
			HeaderDeps:   make([]dao.HeaderData, headerDepCount),
			DepositLinks: map[int]int{},
		}
		copy(out.GroupType[:], groupType)

		inputs := tx.Bucket(bucketInputs)
		for i := 0; i < inputCount; i++ {
			v := inputs.Get(encodeIndexKey(i))
			if v == nil {
				return fmt.Errorf("store: input %d missing", i)
			}
			if out.Inputs[i], err = decodeCell(v); err != nil {
				return fmt.Errorf("store: input %d: %w", i, err)
			}
		}
		outputs := tx.Bucket(bucketOutputs)
		for i := 0; i < outputCount; i++ {
			v := outputs.Get(encodeIndexKey(i))
			if v == nil {
				return fmt.Errorf("store: output %d missing", i)
			}
			if out.Outputs[i], err = decodeCell(v); err != nil {
				return fmt.Errorf("store: output %d: %w", i, err)
			}
		}
		inputHeaders := tx.Bucket(bucketInputHeaders)
		for i := 0; i < inputCount; i++ {
			v := inputHeaders.Get(encodeIndexKey(i))
			if v == nil {
				continue
			}
			h, err := decodeHeader(v)
			if err != nil {
				return fmt.Errorf("store: input header %d: %w", i, err)
			}
			out.InputHeaders[i] = &h
		}
		headerDeps := tx.Bucket(bucketHeaderDeps)
		for i := 0; i < headerDepCount; i++ {
			v := headerDeps.Get(encodeIndexKey(i))
			if v == nil {
				return fmt.Errorf("store: header dep %d missing", i)
			}
			if out.HeaderDeps[i], err = decodeHeader(v); err != nil {
				return fmt.Errorf("store: header dep %d: %w", i, err)
			}
		}
		if err := tx.Bucket(bucketDepositLinks).ForEach(func(k, v []byte) error {
			if len(k) != 4 || len(v) != 4 {
				return fmt.Errorf("store: bad deposit link entry")
			}
			out.DepositLinks[int(binary.LittleEndian.Uint32(k))] = int(binary.LittleEndian.Uint32(v))
			return nil
		}); err != nil {
			return err
		}

		snapshot = out
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if snapshot == nil {
		return nil, false, nil
	}
	return snapshot, true, nil
}

func readCount(meta *bolt.Bucket, key []byte) (int, error) {
	v := meta.Get(key)
	if len(v) != 4 {
		return 0, fmt.Errorf("store: meta %s missing or malformed", string(key))
	}
	return int(binary.LittleEndian.Uint32(v)), nil
}
