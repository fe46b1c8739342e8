package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/strozynskiw/transponster/internal/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Processing aborted (malformed input stream)
	ExitCommandError = 2 // Command error (missing input file, unwritable journal, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// WriteReport encodes the final account summaries as CSV. Amounts are
// rendered at the four-decimal precision of the input format; rows appear
// in the order the summaries were produced (first-seen client order).
func WriteReport(w io.Writer, summaries []ledger.AccountSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, s := range summaries {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row for client %d: %w", s.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	return nil
}
