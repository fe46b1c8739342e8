package harness

import (
	"fmt"
	"io"

	"github.com/strozynskiw/transponster/internal/engine"
	"github.com/strozynskiw/transponster/internal/ledger"
	"github.com/strozynskiw/transponster/internal/money"
)

// Result captures the outcome of running a scenario: the final snapshot and
// every recoverable rejection, in record order.
type Result struct {
	Summaries []ledger.AccountSummary
	Errors    []*engine.ProcessingError
}

// ErrorCodes returns the rejection codes in record order.
func (r *Result) ErrorCodes() []string {
	codes := make([]string, 0, len(r.Errors))
	for _, perr := range r.Errors {
		codes = append(codes, string(perr.Code))
	}
	return codes
}

// Run executes a scenario against a fresh engine and store.
//
// A record that fails to translate (unknown op, unparseable amount) is a
// scenario authoring error and aborts the run; engine-level rejections are
// collected into the result instead.
func Run(s *Scenario) (*Result, error) {
	records, err := translateRecords(s)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	eng := engine.New(ledger.NewStore(), engine.WithErrorSink(func(perr *engine.ProcessingError) {
		result.Errors = append(result.Errors, perr)
	}))

	if err := eng.Process(recordsReader(records)); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result.Summaries = eng.Snapshot()
	return result, nil
}

// Check verifies a result against the scenario's expectations.
func (s *Scenario) Check(result *Result) error {
	if len(s.Errors) > 0 || len(result.Errors) > 0 {
		got := result.ErrorCodes()
		if len(got) != len(s.Errors) {
			return fmt.Errorf("scenario %s: expected %d rejections %v, got %d %v",
				s.Name, len(s.Errors), s.Errors, len(got), got)
		}
		for i, code := range s.Errors {
			if got[i] != code {
				return fmt.Errorf("scenario %s: rejection %d: expected %s, got %s",
					s.Name, i, code, got[i])
			}
		}
	}

	for _, want := range s.Expect {
		summary, ok := findSummary(result.Summaries, ledger.ClientID(want.Client))
		if !ok {
			return fmt.Errorf("scenario %s: no account for client %d in snapshot", s.Name, want.Client)
		}

		if got := summary.Available.String(); got != want.Available {
			return fmt.Errorf("scenario %s: client %d available: expected %s, got %s",
				s.Name, want.Client, want.Available, got)
		}
		if got := summary.Held.String(); got != want.Held {
			return fmt.Errorf("scenario %s: client %d held: expected %s, got %s",
				s.Name, want.Client, want.Held, got)
		}
		if got := summary.Total.String(); got != want.Total {
			return fmt.Errorf("scenario %s: client %d total: expected %s, got %s",
				s.Name, want.Client, want.Total, got)
		}
		if summary.Locked != want.Locked {
			return fmt.Errorf("scenario %s: client %d locked: expected %t, got %t",
				s.Name, want.Client, want.Locked, summary.Locked)
		}
	}

	return nil
}

func translateRecords(s *Scenario) ([]engine.Record, error) {
	records := make([]engine.Record, 0, len(s.Records))
	for i, step := range s.Records {
		op, err := engine.ParseOp(step.Op)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: records[%d]: %w", s.Name, i, err)
		}

		rec := engine.Record{
			Op:     op,
			Client: ledger.ClientID(step.Client),
			Tx:     ledger.TxID(step.Tx),
		}

		if step.Amount != "" {
			amount, err := money.Parse(step.Amount)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: records[%d]: %w", s.Name, i, err)
			}
			rec.Amount = &amount
		}

		records = append(records, rec)
	}
	return records, nil
}

func findSummary(summaries []ledger.AccountSummary, client ledger.ClientID) (ledger.AccountSummary, bool) {
	for _, s := range summaries {
		if s.Client == client {
			return s, true
		}
	}
	return ledger.AccountSummary{}, false
}

// sliceReader adapts a record slice to engine.RecordReader.
type sliceReader struct {
	records []engine.Record
	next    int
}

func recordsReader(records []engine.Record) *sliceReader {
	return &sliceReader{records: records}
}

func (r *sliceReader) Read() (engine.Record, error) {
	if r.next >= len(r.records) {
		return engine.Record{}, io.EOF
	}
	rec := r.records[r.next]
	r.next++
	return rec, nil
}
