package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/module"
)

// HeaderSource provides the headers already known for a run.
// Implemented by *store.Store.
type HeaderSource interface {
	RunPath() string
	Recover() *header.Set
}

// Recorder persists run history. Implemented by *ledger.Ledger.
//
// Recorder failures are logged and never stop identification.
type Recorder interface {
	LastCompletedStep(ctx context.Context, runPath string) (step, total int, ok bool, err error)
	BeginRun(ctx context.Context, runPath string, startStep int) (string, error)
	RecordModuleStep(ctx context.Context, runID string, step int, moduleID string, produced, fresh int) error
	RecordRound(ctx context.Context, runID string, step, fresh, total int) error
	FinishRun(ctx context.Context, runID, status string, lastStep int) error
}

// Status is the way a run ended.
type Status string

const (
	StatusConverged  Status = "converged"
	StatusRoundLimit Status = "round_limit"
	StatusCancelled  Status = "cancelled"
)

// Result is the outcome of Run. On error it holds the partial state reached.
type Result struct {
	// Headers is the accumulated set: recovered headers plus everything
	// discovered in this run.
	Headers *header.Set

	// Initial is the number of headers recovered before the first round.
	Initial int

	// FirstStep is the step number of the first round.
	FirstStep int

	// LastStep is the step number of the last round that ran.
	LastStep int

	// Rounds counts the rounds run.
	Rounds int

	Converged bool
	Status    Status
}

// Engine runs identification rounds until a fixpoint.
type Engine struct {
	source      HeaderSource
	modules     []module.Module
	maxRounds   int
	parallelism int
	recorder    Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRounds stops the run after n rounds without convergence.
// Zero (the default) means no ceiling.
func WithMaxRounds(n int) Option {
	return func(e *Engine) {
		e.maxRounds = n
	}
}

// WithParallelism bounds concurrent module invocations inside a round.
// Values below 1 keep the default, runtime.NumCPU().
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.parallelism = n
		}
	}
}

// WithRecorder records the run and enables step resumption from it.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New creates an engine over the given modules. The modules slice is copied;
// its order is the merge order of every round.
func New(source HeaderSource, modules []module.Module, opts ...Option) *Engine {
	e := &Engine{
		source:      source,
		modules:     append([]module.Module(nil), modules...),
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes rounds until no module reports a new header.
//
// It returns the accumulated headers with a nil error on convergence. When
// the round ceiling is reached it returns the partial result and a
// *RoundLimitError; when ctx is cancelled, the partial result and an error
// wrapping ctx.Err(). Headers found before either stays persisted in the
// workspace.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	runPath := e.source.RunPath()
	set := e.source.Recover()
	step := set.Len()

	runID := ""
	if e.recorder != nil {
		step = e.resumeStep(ctx, runPath, set.Len())
		id, err := e.recorder.BeginRun(ctx, runPath, step)
		if err != nil {
			slog.Warn("ledger unavailable for this run", "error", err)
		} else {
			runID = id
		}
	}

	res := &Result{
		Headers:   set,
		Initial:   set.Len(),
		FirstStep: step,
		LastStep:  step,
	}
	slog.Info("identification starting",
		"run_path", runPath,
		"modules", len(e.modules),
		"recovered", res.Initial,
		"step", step,
	)

	quota := NewRoundQuota(e.maxRounds)
	for {
		if err := ctx.Err(); err != nil {
			e.finish(ctx, runID, res, StatusCancelled)
			return res, fmt.Errorf("identification cancelled before step %d: %w", step, err)
		}
		if err := quota.Check(step); err != nil {
			slog.Warn("round limit reached",
				"max_rounds", quota.MaxRounds(),
				"checks", quota.Current(),
				"next_step", step,
			)
			e.finish(ctx, runID, res, StatusRoundLimit)
			return res, err
		}

		fresh := e.round(ctx, runID, step, set)
		res.Rounds++
		res.LastStep = step

		// A cancelled round may look quiet only because its modules were killed.
		if err := ctx.Err(); err != nil {
			e.finish(ctx, runID, res, StatusCancelled)
			return res, fmt.Errorf("identification cancelled during step %d: %w", step, err)
		}

		e.recordRound(ctx, runID, step, fresh, set.Len())
		slog.Info("round complete", "step", step, "fresh", fresh, "total", set.Len())

		if fresh == 0 {
			res.Converged = true
			e.finish(ctx, runID, res, StatusConverged)
			slog.Info("identification converged", "step", step, "headers", set.Len(), "rounds", res.Rounds)
			return res, nil
		}
		step++
	}
}

// resumeStep picks the first step when a recorder is configured. The ledger's
// last completed step wins only while the workspace still holds at least the
// headers that round ended with; otherwise the recovered count is used.
func (e *Engine) resumeStep(ctx context.Context, runPath string, recovered int) int {
	last, total, ok, err := e.recorder.LastCompletedStep(ctx, runPath)
	switch {
	case err != nil:
		slog.Warn("ledger lookup failed, resuming from header count", "error", err)
		return recovered
	case !ok:
		return recovered
	case recovered == 0 || recovered < total:
		slog.Warn("ledger does not match the workspace, resuming from header count",
			"ledger_step", last,
			"ledger_total", total,
			"recovered", recovered,
		)
		return recovered
	}
	return last + 1
}

// round invokes every module for step and merges the results into set.
// Returns how many headers were new to set.
func (e *Engine) round(ctx context.Context, runID string, step int, set *header.Set) int {
	results := make([]*header.Set, len(e.modules))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, m := range e.modules {
		g.Go(func() error {
			results[i] = m.IdentificationStep(ctx, step)
			return nil
		})
	}
	_ = g.Wait() // invocations never return errors; failures are soft

	fresh := 0
	for i, m := range e.modules {
		got := results[i]
		if got == nil {
			got = header.NewSet()
		}
		added := set.Union(got)
		fresh += added
		slog.Debug("module step merged",
			"module", m.UniqueIdentifier(),
			"step", step,
			"produced", got.Len(),
			"fresh", added,
		)
		if runID != "" {
			if err := e.recorder.RecordModuleStep(ctx, runID, step, m.UniqueIdentifier(), got.Len(), added); err != nil {
				slog.Warn("ledger write failed", "error", err)
			}
		}
	}
	return fresh
}

func (e *Engine) recordRound(ctx context.Context, runID string, step, fresh, total int) {
	if runID == "" {
		return
	}
	if err := e.recorder.RecordRound(ctx, runID, step, fresh, total); err != nil {
		slog.Warn("ledger write failed", "error", err)
	}
}

// finish sets the result status and closes the ledger run. Ledger writes use
// a context detached from cancellation so a cancelled run is still recorded.
func (e *Engine) finish(ctx context.Context, runID string, res *Result, status Status) {
	res.Status = status
	if runID == "" {
		return
	}
	if err := e.recorder.FinishRun(context.WithoutCancel(ctx), runID, string(status), res.LastStep); err != nil {
		slog.Warn("ledger write failed", "error", err)
	}
}
