package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/idorch/internal/module"
)

// ModuleView is the CLI rendering of a discovered module.
type ModuleView struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// ModuleList renders one module per line in text mode.
type ModuleList []ModuleView

func (l ModuleList) String() string {
	var b strings.Builder
	for _, m := range l {
		fmt.Fprintf(&b, "%-10s %s\n", m.Kind, m.Path)
	}
	return b.String()
}

// NewModulesCommand creates the modules command.
func NewModulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules <dir>",
		Short: "List the identification modules found in a directory",
		Long: `List the modules identify would run: executables and .jar archives
directly inside <dir>, symlinks resolved, duplicates removed.

Examples:
  idorch modules ./modules
  idorch modules ./modules --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			modules := module.Discover(args[0], "")
			list := make(ModuleList, 0, len(modules))
			for _, m := range modules {
				list = append(list, ModuleView{Kind: module.Kind(m), Path: m.UniqueIdentifier()})
			}
			if len(list) == 0 {
				formatter.VerboseLog("No modules found in %s", args[0])
			}
			if err := formatter.Success(list); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}
}
