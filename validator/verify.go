package validator

import (
	"errors"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"wstake.dev/wstake/dao"
	"wstake.dev/wstake/ledger"
)

// Verifier runs the whole predicate against one transaction. A run is a
// single linear pipeline: determine the alignment target, scan inputs and
// outputs, align every record, check the governing equations. The first
// failure aborts the run; there is no partial acceptance and no state kept
// across runs.
type Verifier struct {
	q      ledger.Query
	calc   dao.Calculator
	daoID  [32]byte
	selfID [32]byte
	log    *zap.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger attaches a logger for diagnostic context. Logging never changes
// the accept/reject outcome.
func WithLogger(log *zap.Logger) Option {
	return func(v *Verifier) {
		if log != nil {
			v.log = log
		}
	}
}

// NewVerifier builds a Verifier for one validator identity. daoID is the
// deployment-specific DAO system identifier; selfID is this validator's own
// type identity.
func NewVerifier(q ledger.Query, calc dao.Calculator, daoID, selfID [32]byte, opts ...Option) *Verifier {
	v := &Verifier{
		q:      q,
		calc:   calc,
		daoID:  daoID,
		selfID: selfID,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates the transaction. It returns nil on acceptance or a
// *ValidationError whose code names the first violation.
func (v *Verifier) Verify() error {
	if err := v.run(); err != nil {
		v.log.Debug("transaction rejected",
			zap.String("code", string(CodeOf(err))),
			zap.Error(err))
		return err
	}
	return nil
}

func (v *Verifier) run() error {
	target, err := v.alignmentTarget()
	if err != nil {
		return err
	}
	v.log.Debug("alignment target", zap.Uint64("height", target.Number))

	withdrawals, wrappedInputs, err := ScanInputs(v.q, v.calc, v.daoID, v.selfID)
	if err != nil {
		return err
	}
	tables, err := ScanOutputs(v.q, v.daoID, v.selfID, target.Number)
	if err != nil {
		return err
	}
	v.log.Debug("scan complete",
		zap.Int("withdrawals", len(withdrawals)),
		zap.Int("wrapped_inputs", len(wrappedInputs)),
		zap.Int("deposit_groups", len(tables.Deposits.Groups)),
		zap.Int("uninit_groups", len(tables.UninitWrapped.Groups)),
		zap.Int("init_groups", len(tables.InitWrapped.Groups)))

	totalWithdrawn := uint256.NewInt(0)
	for _, w := range withdrawals {
		aligned, err := alignCapacity(v.q, v.calc, w.Index, ledger.SourceInput, target, w.Height, uint256.NewInt(w.Amount))
		if err != nil {
			return err
		}
		if totalWithdrawn, err = addU128(totalWithdrawn, aligned); err != nil {
			return err
		}
	}

	totalInputWrapped := uint256.NewInt(0)
	for _, in := range wrappedInputs {
		aligned, err := alignCapacity(v.q, v.calc, in.Index, ledger.SourceInput, target, in.Record.Height, in.Record.Amount)
		if err != nil {
			return err
		}
		if totalInputWrapped, err = addU128(totalInputWrapped, aligned); err != nil {
			return err
		}
	}

	totalOutputWrapped := uint256.NewInt(0)
	for _, g := range tables.InitWrapped.Groups {
		aligned, err := alignCapacity(v.q, v.calc, g.Index, ledger.SourceOutput, target, g.Height, g.Amount)
		if err != nil {
			return err
		}
		if totalOutputWrapped, err = addU128(totalOutputWrapped, aligned); err != nil {
			return err
		}
	}

	// Equation 1: inputs - withdrawals == outputs. Underflow is itself a
	// conservation violation, not a distinct failure.
	if totalWithdrawn.Gt(totalInputWrapped) {
		return verr(ERR_CONSERVATION, "withdrawn %s exceeds wrapped inputs %s", totalWithdrawn, totalInputWrapped)
	}
	remainder := new(uint256.Int).Sub(totalInputWrapped, totalWithdrawn)
	if !remainder.Eq(totalOutputWrapped) {
		return verr(ERR_CONSERVATION, "wrapped inputs %s - withdrawn %s != wrapped outputs %s", totalInputWrapped, totalWithdrawn, totalOutputWrapped)
	}

	// Equation 2: every uninitialized output group must match a deposit group
	// with the same lock identity and exactly equal amount. Deposits with no
	// wrapped counterpart are allowed.
	for _, g := range tables.UninitWrapped.Groups {
		deposited, ok := tables.Deposits.find(g.LockID)
		if !ok {
			return verr(ERR_UNMATCHED_DEPOSIT, "uninitialized output group has no deposit with the same lock")
		}
		if !deposited.Eq(g.Amount) {
			return verr(ERR_UNMATCHED_DEPOSIT, "uninitialized output amount %s != deposited capacity %s", g.Amount, deposited)
		}
	}

	v.log.Debug("transaction accepted",
		zap.String("total_input_wrapped", totalInputWrapped.String()),
		zap.String("total_withdrawn", totalWithdrawn.String()),
		zap.String("total_output_wrapped", totalOutputWrapped.String()))
	return nil
}

// alignmentTarget reads the header of the first input in this validator's own
// group. A transaction with no group inputs (a pure deposit-and-wrap) has no
// canonical height; height 0 is used, which forces every initialized output
// in such a transaction to be rejected as unaligned.
func (v *Verifier) alignmentTarget() (dao.HeaderData, error) {
	target, err := v.q.Header(0, ledger.SourceGroupInput)
	if errors.Is(err, ledger.ErrIndexOutOfBound) {
		return dao.HeaderData{}, nil
	}
	if err != nil {
		return dao.HeaderData{}, verr(ERR_ENCODING, "group input 0 header: %v", err)
	}
	return target, nil
}
