package engine

import (
	"errors"
	"fmt"

	"github.com/strozynskiw/transponster/internal/ledger"
)

// ProcessingError reports why a single record was rejected.
//
// Processing errors are always recoverable: the engine surfaces them on the
// error channel and continues with the next record. They never abort the
// run - that is reserved for fatal errors (unreadable input, broken output),
// which propagate out of Process as plain errors.
type ProcessingError struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Client identifies the affected account.
	Client ledger.ClientID

	// Tx identifies the offending record's transaction id.
	Tx ledger.TxID
}

// Code categorizes processing errors.
type Code string

const (
	// CodeDuplicateTransaction indicates a deposit/withdrawal reused a
	// transaction id already present in the ledger.
	CodeDuplicateTransaction Code = "DUPLICATE_TRANSACTION"

	// CodeNegativeAmount indicates a deposit/withdrawal amount that was
	// zero or negative.
	CodeNegativeAmount Code = "NEGATIVE_AMOUNT"

	// CodeMissingAmount indicates a deposit/withdrawal record without an
	// amount field.
	CodeMissingAmount Code = "MISSING_AMOUNT"

	// CodeInsufficientFunds indicates a withdrawal larger than the
	// available balance.
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// CodeMissingTransaction indicates a dispute/resolve/chargeback whose
	// transaction id is unknown or belongs to a different client.
	CodeMissingTransaction Code = "MISSING_TRANSACTION"

	// CodeAlreadyDisputed indicates a dispute of a transaction that is
	// already under dispute.
	CodeAlreadyDisputed Code = "ALREADY_DISPUTED"

	// CodeNotDisputed indicates a resolve/chargeback of a transaction that
	// is not under dispute.
	CodeNotDisputed Code = "NOT_DISPUTED"

	// CodeAccountLocked indicates any record against a locked account.
	CodeAccountLocked Code = "ACCOUNT_LOCKED"

	// CodeUnknownOperation indicates a record whose operation the engine
	// does not recognize. Cannot occur through ParseOp.
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"

	// CodeOverflow indicates checked balance arithmetic failed.
	CodeOverflow Code = "OVERFLOW"
)

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s (client=%d, tx=%d)", e.Code, e.Message, e.Client, e.Tx)
}

// ErrCode extracts the processing error code from an error.
// Returns "" if the error is not a ProcessingError.
// Uses errors.As to handle wrapped errors.
func ErrCode(err error) Code {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func newError(code Code, rec Record, format string, args ...any) *ProcessingError {
	return &ProcessingError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Client:  rec.Client,
		Tx:      rec.Tx,
	}
}
