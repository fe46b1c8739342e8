// Package cli wires the transaction engine to the outside world: argument
// parsing, CSV decoding into records, report encoding, and exit codes.
// It is a thin adapter - all invariants live in the engine and the ledger.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the transponster CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "transponster",
		Short: "Transaction reconciliation engine",
		Long: `Transponster replays a CSV stream of transaction records (deposits,
withdrawals, disputes, resolves, chargebacks) and reports the final state of
every client account on stdout.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewProcessCommand(opts))

	return cmd
}
