package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/idorch/internal/config"
	"github.com/roach88/idorch/internal/dominance"
	"github.com/roach88/idorch/internal/engine"
	"github.com/roach88/idorch/internal/ledger"
	"github.com/roach88/idorch/internal/module"
	"github.com/roach88/idorch/internal/proc"
	"github.com/roach88/idorch/internal/store"
)

// IdentifyOptions holds flags for the identify command.
type IdentifyOptions struct {
	*RootOptions
	ModulesDir  string
	ConfigPath  string
	MaxRounds   int
	Parallelism int
	StepTimeout time.Duration
	Java        string
	NoLedger    bool
	All         bool

	// Runner overrides process execution (used in tests).
	Runner proc.Runner
}

// IdentifyResult is the JSON payload of the identify command.
type IdentifyResult struct {
	RunPath   string     `json:"run_path"`
	Converged bool       `json:"converged"`
	Status    string     `json:"status"`
	Recovered int        `json:"recovered"`
	FirstStep int        `json:"first_step"`
	LastStep  int        `json:"last_step"`
	Rounds    int        `json:"rounds"`
	Total     int        `json:"total"`
	Headers   HeaderList `json:"headers"`
}

// String renders the reported headers only; the run summary goes to the log.
func (r IdentifyResult) String() string {
	return r.Headers.String()
}

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	return newIdentifyCommand(&IdentifyOptions{RootOptions: rootOpts})
}

func newIdentifyCommand(opts *IdentifyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify <run-path>",
		Short: "Run identification modules to a fixpoint",
		Long: `Discover identification modules, run them in rounds against the run path
until a round yields nothing new, and print the dominant headers.

Headers already in <run-path>/identified are recovered first, so an
interrupted run continues where it stopped.

Examples:
  idorch identify ./run --modules ./modules
  idorch identify ./run --modules ./modules --max-rounds 20 --all
  idorch identify ./run --config idorch.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ModulesDir, "modules", "", "directory holding identification modules")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().IntVar(&opts.MaxRounds, "max-rounds", 0, "stop after this many rounds (0 = unlimited)")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "modules run at once per round (0 = number of CPUs)")
	cmd.Flags().DurationVar(&opts.StepTimeout, "timeout", 0, "per-module step timeout (0 = none)")
	cmd.Flags().StringVar(&opts.Java, "java", module.DefaultJava, "launcher for .jar modules")
	cmd.Flags().BoolVar(&opts.NoLedger, "no-ledger", false, "do not record the run in the ledger")
	cmd.Flags().BoolVar(&opts.All, "all", false, "print every header, not only the dominant ones")

	return cmd
}

// resolveConfig layers config file values over defaults, then explicitly set
// flags over both.
func resolveConfig(cmd *cobra.Command, opts *IdentifyOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("modules") {
		cfg.ModulesDir = opts.ModulesDir
	}
	if flags.Changed("max-rounds") {
		cfg.MaxRounds = opts.MaxRounds
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = opts.Parallelism
	}
	if flags.Changed("timeout") {
		cfg.StepTimeout = opts.StepTimeout
	}
	if flags.Changed("java") {
		cfg.Java = opts.Java
	}
	if opts.NoLedger {
		cfg.Ledger = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.ModulesDir == "" {
		return cfg, NewExitError(ExitCommandError, "no modules directory: pass --modules or set modules_dir")
	}
	return cfg, nil
}

func runIdentify(cmd *cobra.Command, opts *IdentifyOptions, runPath string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	st, err := store.Open(runPath)
	if err != nil {
		formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open run path", err)
	}

	modOpts := []module.Option{
		module.WithJava(cfg.Java),
		module.WithStepTimeout(cfg.StepTimeout),
	}
	if opts.Runner != nil {
		modOpts = append(modOpts, module.WithRunner(opts.Runner))
	}
	modules := module.Discover(cfg.ModulesDir, st.RunPath(), modOpts...)
	formatter.VerboseLog("Discovered %d modules in %s", len(modules), cfg.ModulesDir)

	engOpts := []engine.Option{
		engine.WithMaxRounds(cfg.MaxRounds),
		engine.WithParallelism(cfg.Parallelism),
	}
	if cfg.Ledger {
		led, err := ledger.Open(filepath.Join(st.IdentifiedPath(), ledger.FileName))
		if err != nil {
			// The ledger is bookkeeping; the header files stay authoritative.
			slog.Warn("ledger unavailable, running without it", "error", err)
		} else {
			defer led.Close()
			engOpts = append(engOpts, engine.WithRecorder(led))
		}
	}
	eng := engine.New(st, modules, engOpts...)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping identification", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	res, runErr := eng.Run(ctx)

	reported := res.Headers
	if !opts.All {
		reported = dominance.Filter(res.Headers)
	}
	result := IdentifyResult{
		RunPath:   st.RunPath(),
		Converged: res.Converged,
		Status:    string(res.Status),
		Recovered: res.Initial,
		FirstStep: res.FirstStep,
		LastStep:  res.LastStep,
		Rounds:    res.Rounds,
		Total:     res.Headers.Len(),
		Headers:   newHeaderList(reported.Headers()),
	}
	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if runErr != nil {
		if engine.IsRoundLimitError(runErr) {
			return WrapExitError(ExitFailure, "identification did not converge", runErr)
		}
		return WrapExitError(ExitFailure, "identification stopped", runErr)
	}
	formatter.VerboseLog("Converged at step %d with %d headers (%d reported)", res.LastStep, result.Total, len(result.Headers))
	return nil
}
