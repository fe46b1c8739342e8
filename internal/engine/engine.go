// Package engine implements the transaction processing engine.
//
// The engine consumes one record at a time, in input order, and applies it
// to the ledger store: deposits and withdrawals move the available balance
// and are retained for later reference; dispute, resolve and chargeback
// enact the three-stage protocol contesting a prior transaction.
//
// ARCHITECTURE:
//
// Single-threaded, synchronous apply loop. Record order is a correctness
// requirement (a dispute must follow its deposit, and global transaction-id
// uniqueness is checked against the full prior history), so there is no
// parallelism across clients.
//
// ERROR HANDLING: A rejected record yields a ProcessingError on the error
// sink and processing continues with the next record. A failed record never
// leaves partial state behind: every precondition and every checked
// arithmetic step is evaluated before the first field is mutated.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/strozynskiw/transponster/internal/ledger"
	"github.com/strozynskiw/transponster/internal/money"
)

// ErrorSink receives recoverable per-record errors. It is the error channel
// of the run; rejected records never reach the primary output.
type ErrorSink func(*ProcessingError)

// Observer is notified after every record, successful or not. perr is nil
// on success. Used for audit journaling.
type Observer func(rec Record, perr *ProcessingError)

// Option configures an Engine.
type Option func(*Engine)

// WithErrorSink replaces the default error sink (structured slog warning).
func WithErrorSink(sink ErrorSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithObserver registers an observer for every processed record.
// Observers run in record order, after the record has been applied.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, obs)
	}
}

// Engine applies records to a ledger store.
//
// The store is exclusively owned by the engine for the lifetime of one run;
// no external mutation occurs between records.
type Engine struct {
	store     *ledger.Store
	sink      ErrorSink
	observers []Observer
}

// New creates an Engine over the given store.
func New(store *ledger.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		sink:  logSink,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Process drains the reader, applying each record in order.
//
// Recoverable errors go to the error sink and never stop the stream. A
// reader error other than io.EOF is fatal and is returned as-is wrapped.
func (e *Engine) Process(r RecordReader) error {
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}

		perr := e.Apply(rec)
		for _, obs := range e.observers {
			obs(rec, perr)
		}
		if perr != nil {
			e.sink(perr)
		}
	}
}

// Snapshot returns the final account summaries in first-seen client order.
func (e *Engine) Snapshot() []ledger.AccountSummary {
	return e.store.Snapshot()
}

// Apply executes one record against the ledger.
//
// Returns nil on success, or a ProcessingError describing why the record
// was rejected. On rejection the ledger is exactly as it was before the
// attempt.
func (e *Engine) Apply(rec Record) *ProcessingError {
	account := e.store.GetOrCreateAccount(rec.Client)

	// A locked account accepts no further mutating records of any kind.
	if account.Locked {
		return newError(CodeAccountLocked, rec, "account %d is locked", rec.Client)
	}

	switch rec.Op {
	case OpDeposit:
		return e.applyDeposit(account, rec)
	case OpWithdrawal:
		return e.applyWithdrawal(account, rec)
	case OpDispute:
		return e.applyDispute(account, rec)
	case OpResolve:
		return e.applyResolve(account, rec)
	case OpChargeback:
		return e.applyChargeback(account, rec)
	default:
		return newError(CodeUnknownOperation, rec, "unknown operation %d", rec.Op)
	}
}

func (e *Engine) applyDeposit(account *ledger.Account, rec Record) *ProcessingError {
	if _, ok := e.store.Transaction(rec.Tx); ok {
		return newError(CodeDuplicateTransaction, rec, "transaction %d already exists", rec.Tx)
	}

	amount, perr := recordAmount(rec)
	if perr != nil {
		return perr
	}

	available, err := account.Available.Add(amount)
	if err != nil {
		return newError(CodeOverflow, rec, "deposit: %v", err)
	}

	account.Available = available
	e.store.RecordTransaction(rec.Tx, rec.Client, ledger.KindDeposit, amount)
	return nil
}

func (e *Engine) applyWithdrawal(account *ledger.Account, rec Record) *ProcessingError {
	if _, ok := e.store.Transaction(rec.Tx); ok {
		return newError(CodeDuplicateTransaction, rec, "transaction %d already exists", rec.Tx)
	}

	amount, perr := recordAmount(rec)
	if perr != nil {
		return perr
	}

	if account.Available < amount {
		return newError(CodeInsufficientFunds, rec,
			"available %v is less than withdrawal %v", account.Available, amount)
	}

	available, err := account.Available.Sub(amount)
	if err != nil {
		return newError(CodeOverflow, rec, "withdrawal: %v", err)
	}

	account.Available = available
	e.store.RecordTransaction(rec.Tx, rec.Client, ledger.KindWithdrawal, amount)
	return nil
}

func (e *Engine) applyDispute(account *ledger.Account, rec Record) *ProcessingError {
	tx, perr := e.referencedTransaction(rec)
	if perr != nil {
		return perr
	}

	if tx.Disputed {
		return newError(CodeAlreadyDisputed, rec, "transaction %d is already under dispute", rec.Tx)
	}

	switch tx.Kind {
	case ledger.KindDeposit:
		// The disputed deposit is frozen: moved from available to held.
		available, err := account.Available.Sub(tx.Amount)
		if err != nil {
			return newError(CodeOverflow, rec, "dispute: %v", err)
		}
		held, err := account.Held.Add(tx.Amount)
		if err != nil {
			return newError(CodeOverflow, rec, "dispute: %v", err)
		}
		account.Available = available
		account.Held = held

	case ledger.KindWithdrawal:
		// The withdrawn amount already left available, so only held grows
		// and the total increases - an accepted asymmetry versus the
		// deposit dispute. The money is tentatively back while contested.
		held, err := account.Held.Add(tx.Amount)
		if err != nil {
			return newError(CodeOverflow, rec, "dispute: %v", err)
		}
		account.Held = held
	}

	tx.Disputed = true
	return nil
}

func (e *Engine) applyResolve(account *ledger.Account, rec Record) *ProcessingError {
	tx, perr := e.referencedTransaction(rec)
	if perr != nil {
		return perr
	}

	if !tx.Disputed {
		return newError(CodeNotDisputed, rec, "transaction %d is not under dispute", rec.Tx)
	}

	// Both kinds release the held funds back to available. For a disputed
	// withdrawal this reflects "the withdrawal did not happen".
	held, err := account.Held.Sub(tx.Amount)
	if err != nil {
		return newError(CodeOverflow, rec, "resolve: %v", err)
	}
	available, err := account.Available.Add(tx.Amount)
	if err != nil {
		return newError(CodeOverflow, rec, "resolve: %v", err)
	}

	account.Held = held
	account.Available = available
	tx.Disputed = false
	return nil
}

func (e *Engine) applyChargeback(account *ledger.Account, rec Record) *ProcessingError {
	tx, perr := e.referencedTransaction(rec)
	if perr != nil {
		return perr
	}

	if !tx.Disputed {
		return newError(CodeNotDisputed, rec, "transaction %d is not under dispute", rec.Tx)
	}

	held, err := account.Held.Sub(tx.Amount)
	if err != nil {
		return newError(CodeOverflow, rec, "chargeback: %v", err)
	}

	switch tx.Kind {
	case ledger.KindDeposit:
		// The disputed deposit is clawed back entirely.
		account.Held = held

	case ledger.KindWithdrawal:
		// The withdrawal stands: the tentatively-returned held funds are
		// dropped and the amount is confirmed gone from available. This
		// may drive available negative.
		available, err := account.Available.Sub(tx.Amount)
		if err != nil {
			return newError(CodeOverflow, rec, "chargeback: %v", err)
		}
		account.Held = held
		account.Available = available
	}

	tx.Disputed = false
	account.Locked = true
	return nil
}

// referencedTransaction resolves the transaction a dispute/resolve/chargeback
// record points at. A transaction owned by a different client is reported as
// missing, not as a client mismatch - foreign transactions must be
// indistinguishable from non-existent ones.
func (e *Engine) referencedTransaction(rec Record) (*ledger.Transaction, *ProcessingError) {
	tx, ok := e.store.Transaction(rec.Tx)
	if !ok || tx.Client != rec.Client {
		return nil, newError(CodeMissingTransaction, rec, "referenced transaction %d doesn't exist", rec.Tx)
	}
	return tx, nil
}

// recordAmount validates the amount of a deposit/withdrawal record.
func recordAmount(rec Record) (money.Amount, *ProcessingError) {
	if rec.Amount == nil {
		return 0, newError(CodeMissingAmount, rec, "no amount in transaction %d", rec.Tx)
	}
	if !rec.Amount.IsPositive() {
		return 0, newError(CodeNegativeAmount, rec, "amount %v must be positive", *rec.Amount)
	}
	return *rec.Amount, nil
}

// logSink is the default error sink: a structured warning on the process
// log, keeping rejected records out of the primary output.
func logSink(perr *ProcessingError) {
	slog.Warn("record rejected",
		"code", string(perr.Code),
		"client", perr.Client,
		"tx", perr.Tx,
		"reason", perr.Message,
	)
}
