package engine

import (
	"fmt"

	"github.com/strozynskiw/transponster/internal/ledger"
	"github.com/strozynskiw/transponster/internal/money"
)

// Op is the operation carried by an input record.
type Op uint8

const (
	OpDeposit Op = iota + 1
	OpWithdrawal
	OpDispute
	OpResolve
	OpChargeback
)

// String returns the lowercase wire name of the operation.
func (o Op) String() string {
	switch o {
	case OpDeposit:
		return "deposit"
	case OpWithdrawal:
		return "withdrawal"
	case OpDispute:
		return "dispute"
	case OpResolve:
		return "resolve"
	case OpChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseOp converts a wire name into an Op. Both "withdraw" and "withdrawal"
// are accepted; input sources disagree on the spelling.
func ParseOp(s string) (Op, error) {
	switch s {
	case "deposit":
		return OpDeposit, nil
	case "withdraw", "withdrawal":
		return OpWithdrawal, nil
	case "dispute":
		return OpDispute, nil
	case "resolve":
		return OpResolve, nil
	case "chargeback":
		return OpChargeback, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// Record is one well-typed input record.
//
// Amount is present only for deposits and withdrawals; it is nil for the
// dispute/resolve/chargeback records, which reference a prior transaction
// by id instead of carrying their own amount.
type Record struct {
	Op     Op
	Client ledger.ClientID
	Tx     ledger.TxID
	Amount *money.Amount
}

// RecordReader supplies records in input order. Read returns io.EOF at end
// of stream; any other error is fatal and aborts the run.
type RecordReader interface {
	Read() (Record, error)
}
