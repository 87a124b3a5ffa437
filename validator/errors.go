// Package validator implements the wrapped-staked-token transaction-validity
// predicate: it scans a transaction's inputs and outputs, aligns every
// recorded amount to one canonical block height via the external interest
// formula, and checks the conservation and deposit-pairing equations.
package validator

import "fmt"

type ErrorCode string

const (
	// ERR_ENCODING covers malformed cell data (unexpected length or layout)
	// and amounts that cannot be expressed to the interest formula.
	ERR_ENCODING ErrorCode = "ERR_ENCODING"
	// ERR_LEDGER_QUERY covers ledger reads that failed for reasons other
	// than end-of-list or a missing field.
	ERR_LEDGER_QUERY ErrorCode = "ERR_LEDGER_QUERY"
	// ERR_TOO_MANY_GROUPS is returned when an accumulation table would exceed
	// MaxGroupEntries distinct keys.
	ERR_TOO_MANY_GROUPS ErrorCode = "ERR_TOO_MANY_GROUPS"
	// ERR_ALIGN is returned when a record cannot be realigned: the target
	// height is older than the record's origin height, or the interest
	// formula rejected the realignment.
	ERR_ALIGN ErrorCode = "ERR_ALIGN"
	// ERR_OUTPUT_NOT_ALIGNED is returned when an initialized wrapped-token
	// output's height differs from the transaction's alignment height.
	ERR_OUTPUT_NOT_ALIGNED ErrorCode = "ERR_OUTPUT_NOT_ALIGNED"
	// ERR_CONSERVATION is returned when aligned inputs minus aligned
	// withdrawals does not equal aligned outputs.
	ERR_CONSERVATION ErrorCode = "ERR_CONSERVATION"
	// ERR_UNMATCHED_DEPOSIT is returned when an uninitialized wrapped-token
	// output has no deposit output with the same lock identity and amount.
	ERR_UNMATCHED_DEPOSIT ErrorCode = "ERR_UNMATCHED_DEPOSIT"
	// ERR_AMOUNT_OVERFLOW is returned when accumulating amounts would exceed
	// the 128-bit amount domain or the 64-bit capacity domain.
	ERR_AMOUNT_OVERFLOW ErrorCode = "ERR_AMOUNT_OVERFLOW"
)

// ValidationError is the single error type the predicate returns. The code
// alone decides the outcome; Msg carries diagnostic context for logging.
type ValidationError struct {
	Code ErrorCode
	Msg  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func verr(code ErrorCode, format string, args ...any) error {
	return &ValidationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a
// ValidationError.
func CodeOf(err error) ErrorCode {
	if ve, ok := err.(*ValidationError); ok {
		return ve.Code
	}
	return ""
}
