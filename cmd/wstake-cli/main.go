// wstake-cli is a JSON request/response driver: it reads one request from
// stdin, runs the requested operation, and writes one response to stdout.
// Diagnostics go to stderr via zap and never touch the response.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wstake.dev/wstake/config"
	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
	"wstake.dev/wstake/store"
	"wstake.dev/wstake/validator"
)

type cellSnapshot struct {
	Capacity         uint64 `json:"capacity"`
	OccupiedCapacity uint64 `json:"occupied_capacity"`
	LockScriptHex    string `json:"lock_script"`
	TypeHashHex      string `json:"type_hash,omitempty"`
	DataHex          string `json:"data,omitempty"`
}

type headerSnapshot struct {
	Number          uint64 `json:"number"`
	Epoch           uint64 `json:"epoch,omitempty"`
	AccumulatedRate uint64 `json:"accumulated_rate,omitempty"`
}

type txSnapshot struct {
	Inputs       []cellSnapshot    `json:"inputs"`
	Outputs      []cellSnapshot    `json:"outputs"`
	InputHeaders []*headerSnapshot `json:"input_headers,omitempty"`
	HeaderDeps   []headerSnapshot  `json:"header_deps,omitempty"`
	DepositLinks map[string]int    `json:"deposit_links,omitempty"`
	SelfTypeHash string            `json:"self_type_hash"`
}

type Request struct {
	Op          string      `json:"op"`
	ConfigPath  string      `json:"config,omitempty"`
	DAOTypeHash string      `json:"dao_type_hash,omitempty"`
	DBPath      string      `json:"db_path,omitempty"`
	LogLevel    string      `json:"log_level,omitempty"`
	Tx          *txSnapshot `json:"tx,omitempty"`
	Amount      string      `json:"amount,omitempty"`
	Height      uint64      `json:"height,omitempty"`
	RecordHex   string      `json:"record_hex,omitempty"`
}

type Response struct {
	Ok        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
	Err       string `json:"err,omitempty"`
	RecordHex string `json:"record_hex,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Height    uint64 `json:"height,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func fail(w io.Writer, err error) {
	if code := validator.CodeOf(err); code != "" {
		writeResp(w, Response{Ok: false, Code: string(code), Err: err.Error()})
		return
	}
	writeResp(w, Response{Ok: false, Err: err.Error()})
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// resolveDAOID takes the DAO system identifier from the config file when one
// is given, else from the inline hex field.
func resolveDAOID(req Request) ([32]byte, string, error) {
	if req.ConfigPath != "" {
		cfg, err := config.Load(req.ConfigPath)
		if err != nil {
			return [32]byte{}, "", err
		}
		id, err := cfg.DAOID()
		if err != nil {
			return [32]byte{}, "", err
		}
		level := req.LogLevel
		if level == "" {
			level = cfg.LogLevel
		}
		return id, level, nil
	}
	raw, err := hex.DecodeString(req.DAOTypeHash)
	if err != nil || len(raw) != 32 {
		return [32]byte{}, "", fmt.Errorf("dao_type_hash: expected 64 hex chars")
	}
	var id [32]byte
	copy(id[:], raw)
	return id, req.LogLevel, nil
}

func buildTransaction(snap *txSnapshot) (*ledger.Transaction, [32]byte, error) {
	if snap == nil {
		return nil, [32]byte{}, fmt.Errorf("tx snapshot required")
	}
	selfRaw, err := hex.DecodeString(snap.SelfTypeHash)
	if err != nil || len(selfRaw) != 32 {
		return nil, [32]byte{}, fmt.Errorf("self_type_hash: expected 64 hex chars")
	}
	var selfID [32]byte
	copy(selfID[:], selfRaw)

	tx := &ledger.Transaction{
		GroupType:    selfID,
		DepositLinks: map[int]int{},
	}
	for i, c := range snap.Inputs {
		cell, err := buildCell(c)
		if err != nil {
			return nil, [32]byte{}, fmt.Errorf("input %d: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, cell)
	}
	for i, c := range snap.Outputs {
		cell, err := buildCell(c)
		if err != nil {
			return nil, [32]byte{}, fmt.Errorf("output %d: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, cell)
	}
	tx.InputHeaders = make([]*dao.HeaderData, len(tx.Inputs))
	for i, h := range snap.InputHeaders {
		if i >= len(tx.InputHeaders) {
			return nil, [32]byte{}, fmt.Errorf("input_headers: %d entries for %d inputs", len(snap.InputHeaders), len(tx.Inputs))
		}
		if h == nil {
			continue
		}
		tx.InputHeaders[i] = &dao.HeaderData{Number: h.Number, Epoch: h.Epoch, AccumulatedRate: h.AccumulatedRate}
	}
	for _, h := range snap.HeaderDeps {
		tx.HeaderDeps = append(tx.HeaderDeps, dao.HeaderData{Number: h.Number, Epoch: h.Epoch, AccumulatedRate: h.AccumulatedRate})
	}
	for key, depIndex := range snap.DepositLinks {
		inputIndex, err := strconv.Atoi(key)
		if err != nil {
			return nil, [32]byte{}, fmt.Errorf("deposit_links: bad input index %q", key)
		}
		tx.DepositLinks[inputIndex] = depIndex
	}
	return tx, selfID, nil
}

func buildCell(c cellSnapshot) (ledger.Cell, error) {
	lockScript, err := hex.DecodeString(c.LockScriptHex)
	if err != nil {
		return ledger.Cell{}, fmt.Errorf("lock_script: %w", err)
	}
	data, err := hex.DecodeString(c.DataHex)
	if err != nil {
		return ledger.Cell{}, fmt.Errorf("data: %w", err)
	}
	cell := ledger.Cell{
		Capacity:         c.Capacity,
		OccupiedCapacity: c.OccupiedCapacity,
		LockID:           ledger.ScriptIdentity(lockScript),
		Data:             data,
	}
	if c.TypeHashHex != "" {
		raw, err := hex.DecodeString(c.TypeHashHex)
		if err != nil || len(raw) != 32 {
			return ledger.Cell{}, fmt.Errorf("type_hash: expected 64 hex chars")
		}
		var typeID [32]byte
		copy(typeID[:], raw)
		cell.TypeID = &typeID
	}
	return cell, nil
}

func verifyTransaction(log *zap.Logger, tx *ledger.Transaction, daoID, selfID [32]byte) Response {
	v := validator.NewVerifier(tx, dao.LinearCalculator{}, daoID, selfID, validator.WithLogger(log))
	if err := v.Verify(); err != nil {
		if code := validator.CodeOf(err); code != "" {
			return Response{Ok: false, Code: string(code), Err: err.Error()}
		}
		return Response{Ok: false, Err: err.Error()}
	}
	return Response{Ok: true}
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}

	switch req.Op {
	case "verify_tx":
		daoID, level, err := resolveDAOID(req)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		log, err := buildLogger(level)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		defer func() { _ = log.Sync() }()
		tx, selfID, err := buildTransaction(req.Tx)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		writeResp(os.Stdout, verifyTransaction(log, tx, daoID, selfID))

	case "import_tx":
		tx, _, err := buildTransaction(req.Tx)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		if req.DBPath == "" {
			fail(os.Stdout, fmt.Errorf("db_path required"))
			return
		}
		db, err := store.Open(req.DBPath)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		defer func() { _ = db.Close() }()
		if err := db.ImportTransaction(tx); err != nil {
			fail(os.Stdout, err)
			return
		}
		writeResp(os.Stdout, Response{Ok: true})

	case "verify_stored":
		daoID, level, err := resolveDAOID(req)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		log, err := buildLogger(level)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		defer func() { _ = log.Sync() }()
		if req.DBPath == "" {
			fail(os.Stdout, fmt.Errorf("db_path required"))
			return
		}
		db, err := store.Open(req.DBPath)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		defer func() { _ = db.Close() }()
		tx, ok, err := db.LoadTransaction()
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		if !ok {
			fail(os.Stdout, fmt.Errorf("no snapshot imported at %s", req.DBPath))
			return
		}
		writeResp(os.Stdout, verifyTransaction(log, tx, daoID, tx.GroupType))

	case "encode_record":
		amount := new(uint256.Int)
		if err := amount.SetFromDecimal(req.Amount); err != nil {
			fail(os.Stdout, fmt.Errorf("amount: %w", err))
			return
		}
		data, err := validator.EncodeWrappedRecord(validator.WrappedTokenRecord{Amount: amount, Height: req.Height})
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		writeResp(os.Stdout, Response{Ok: true, RecordHex: hex.EncodeToString(data)})

	case "decode_record":
		data, err := hex.DecodeString(req.RecordHex)
		if err != nil {
			fail(os.Stdout, fmt.Errorf("record_hex: %w", err))
			return
		}
		rec, err := validator.DecodeWrappedRecord(data)
		if err != nil {
			fail(os.Stdout, err)
			return
		}
		writeResp(os.Stdout, Response{Ok: true, Amount: rec.Amount.Dec(), Height: rec.Height})

	default:
		writeResp(os.Stdout, Response{Ok: false, Err: fmt.Sprintf("unknown op %q", req.Op)})
	}
}
