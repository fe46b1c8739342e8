package cli

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/strozynskiw/transponster/internal/engine"
	"github.com/strozynskiw/transponster/internal/journal"
	"github.com/strozynskiw/transponster/internal/ledger"
)

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	Journal string
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "process <input.csv>",
		Short: "Replay a transaction stream and report final account state",
		Long: `Process reads transaction records from a CSV file, applies them in input
order, and writes the final per-client account report to stdout as CSV.

Rejected records (insufficient funds, unknown disputes, locked accounts, ...)
are logged to stderr and skipped; only an unreadable or malformed input
stream aborts the run.

Example:
  transponster process transactions.csv > accounts.csv
  transponster process transactions.csv --journal audit.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite audit journal (optional)")

	return cmd
}

func runProcess(opts *ProcessOptions, inputPath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag. Diagnostics go to stderr;
	// stdout carries only the report.
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	// Each run gets a time-sortable token for log and journal correlation.
	runToken := uuid.Must(uuid.NewV7()).String()
	slog.Debug("processing starting", "run", runToken, "input", inputPath)

	input, err := os.Open(inputPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open input", err)
	}
	defer input.Close()

	engineOpts := []engine.Option{}
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal, runToken)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithObserver(j.Observer()))
		slog.Debug("journal ready", "path", opts.Journal)
	}

	eng := engine.New(ledger.NewStore(), engineOpts...)

	if err := eng.Process(NewCSVReader(input)); err != nil {
		return WrapExitError(ExitFailure, "processing aborted", err)
	}

	summaries := eng.Snapshot()
	slog.Debug("processing finished", "run", runToken, "accounts", len(summaries))

	if err := WriteReport(cmd.OutOrStdout(), summaries); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	return nil
}
