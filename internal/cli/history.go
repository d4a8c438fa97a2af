package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/idorch/internal/ledger"
	"github.com/roach88/idorch/internal/store"
)

// RunView is one recorded run with its module invocations.
type RunView struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	StartStep int        `json:"start_step"`
	LastStep  *int       `json:"last_step,omitempty"`
	Steps     []StepView `json:"steps"`
}

// StepView is one recorded module invocation.
type StepView struct {
	Step     int    `json:"step"`
	Module   string `json:"module"`
	Produced int    `json:"produced"`
	Fresh    int    `json:"fresh"`
}

// History renders runs and their steps in text mode.
type History []RunView

func (h History) String() string {
	if len(h) == 0 {
		return "No runs recorded.\n"
	}
	var b strings.Builder
	for _, r := range h {
		fmt.Fprintf(&b, "run %s status=%s start=%d", r.ID, r.Status, r.StartStep)
		if r.LastStep != nil {
			fmt.Fprintf(&b, " last=%d", *r.LastStep)
		}
		b.WriteByte('\n')
		for _, s := range r.Steps {
			fmt.Fprintf(&b, "  step %d %s produced=%d fresh=%d\n", s.Step, s.Module, s.Produced, s.Fresh)
		}
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <run-path>",
		Short: "Show the ledger of past identification runs",
		Long: `Print the runs recorded in <run-path>/identified/ledger.db and what each
module reported per step.

Examples:
  idorch history ./run
  idorch history ./run --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			runPath, err := filepath.Abs(args[0])
			if err != nil {
				formatter.Error(ErrCodeNotFound, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid run path", err)
			}

			dbPath := filepath.Join(runPath, store.IdentifiedDir, ledger.FileName)
			if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
				return formatter.Success(History{})
			}

			led, err := ledger.Open(dbPath)
			if err != nil {
				formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to open ledger", err)
			}
			defer led.Close()

			ctx := cmd.Context()
			runs, err := led.Runs(ctx, runPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read runs", err)
			}
			steps, err := led.Rounds(ctx, runPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read steps", err)
			}

			byRun := make(map[string][]StepView, len(runs))
			for _, s := range steps {
				byRun[s.RunID] = append(byRun[s.RunID], StepView{
					Step:     s.Step,
					Module:   s.Module,
					Produced: s.Produced,
					Fresh:    s.Fresh,
				})
			}

			history := make(History, 0, len(runs))
			for _, r := range runs {
				view := RunView{
					ID:        r.ID,
					Status:    r.Status,
					StartStep: r.StartStep,
					LastStep:  r.LastStep,
					Steps:     byRun[r.ID],
				}
				if view.Steps == nil {
					view.Steps = []StepView{}
				}
				history = append(history, view)
			}

			if err := formatter.Success(history); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}
}
