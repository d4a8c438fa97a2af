package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/idorch/internal/dominance"
	"github.com/roach88/idorch/internal/store"
)

// HeadersOptions holds flags for the headers command.
type HeadersOptions struct {
	*RootOptions
	Dominant bool
}

// NewHeadersCommand creates the headers command.
func NewHeadersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HeadersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "headers <run-path>",
		Short: "List the headers persisted under a run path",
		Long: `Read every header record under <run-path>/identified without running
any module. Unreadable records are skipped.

Examples:
  idorch headers ./run
  idorch headers ./run --dominant --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

			dir := filepath.Join(args[0], store.IdentifiedDir, store.BinaryDir)
			set := store.RecoverDir(dir)
			if opts.Dominant {
				set = dominance.Filter(set)
			}
			formatter.VerboseLog("%d headers in %s", set.Len(), dir)

			if err := formatter.Success(newHeaderList(set.Headers())); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Dominant, "dominant", false, "only print headers no other header dominates")

	return cmd
}
