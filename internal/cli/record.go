package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Category string
	Elements []string
	BodyPath string
}

// RecordResult is the payload of the record command.
type RecordResult struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

func (r RecordResult) String() string {
	return r.Path + "\n"
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <run-path>",
		Short: "Persist a header into a run path",
		Long: `Write a header record the way a module would and print its absolute
path. Scripts acting as modules can call this and echo the path.

Examples:
  idorch record ./run --category Mapping --element a --element b
  idorch record ./run --category Scheduling --element t0 --body-path ./body.msgpack`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

			if opts.Category == "" {
				formatter.Error(ErrCodeGeneric, "category must not be empty", nil)
				return NewExitError(ExitCommandError, "category must not be empty")
			}

			st, err := store.Open(args[0])
			if err != nil {
				formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to open run path", err)
			}

			h := header.New(opts.Category, opts.Elements, opts.BodyPath)
			path, err := st.Save(h)
			if err != nil {
				formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("failed to save header: %v", err), nil)
				return WrapExitError(ExitCommandError, "failed to save header", err)
			}

			if err := formatter.Success(RecordResult{ID: h.ID(), Path: path}); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "decision model category")
	cmd.Flags().StringArrayVar(&opts.Elements, "element", nil, "covered element (repeatable)")
	cmd.Flags().StringVar(&opts.BodyPath, "body-path", "", "path of the model body")
	cmd.MarkFlagRequired("category")

	return cmd
}
