// Package testutil provides deterministic fakes for orchestration tests.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
	"github.com/roach88/idorch/internal/store"
)

// StepFunc computes the headers a scripted module emits at step. It can
// inspect the workspace through st, the way a real module reads facts written
// by others in earlier rounds.
type StepFunc func(step int, st *store.Store) []header.Header

// Call is one recorded invocation.
type Call struct {
	Program string
	Step    int
	Command proc.Command
}

// ScriptedRunner is a proc.Runner that plays identification modules.
//
// For each invocation it identifies the program (the archive path for
// `java -jar` commands), saves the scripted headers for that step into the
// store, and prints their record paths, as a real module would.
//
// Thread-safety: Run may be called from concurrent goroutines.
type ScriptedRunner struct {
	mu        sync.Mutex
	store     *store.Store
	funcs     map[string]StepFunc
	raw       map[string]map[int][]string
	failures  map[string]error
	exitCodes map[string]int
	blockers  map[string]bool
	calls     []Call
}

// NewScriptedRunner creates a runner that writes headers into st.
func NewScriptedRunner(st *store.Store) *ScriptedRunner {
	return &ScriptedRunner{
		store:     st,
		funcs:     make(map[string]StepFunc),
		raw:       make(map[string]map[int][]string),
		failures:  make(map[string]error),
		exitCodes: make(map[string]int),
		blockers:  make(map[string]bool),
	}
}

// On scripts program to emit headers at exactly step.
// Multiple On calls for the same program accumulate.
func (r *ScriptedRunner) On(program string, step int, headers ...header.Header) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.funcs[program]
	r.funcs[program] = func(s int, st *store.Store) []header.Header {
		var out []header.Header
		if prev != nil {
			out = prev(s, st)
		}
		if s == step {
			out = append(out, headers...)
		}
		return out
	}
	return r
}

// OnFunc scripts program with a function of the step.
func (r *ScriptedRunner) OnFunc(program string, fn StepFunc) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[program] = fn
	return r
}

// RawOutput adds stdout lines printed verbatim by program at step.
func (r *ScriptedRunner) RawOutput(program string, step int, lines ...string) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raw[program] == nil {
		r.raw[program] = make(map[int][]string)
	}
	r.raw[program][step] = append(r.raw[program][step], lines...)
	return r
}

// Fail makes every invocation of program fail to start with err.
func (r *ScriptedRunner) Fail(program string, err error) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[program] = err
	return r
}

// ExitCode makes program report code after printing its output.
func (r *ScriptedRunner) ExitCode(program string, code int) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exitCodes[program] = code
	return r
}

// Block makes program hang until its context is done.
func (r *ScriptedRunner) Block(program string) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blockers[program] = true
	return r
}

// Run implements proc.Runner.
func (r *ScriptedRunner) Run(ctx context.Context, cmd proc.Command) (*proc.Result, error) {
	program, step, err := parseInvocation(cmd)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{Program: program, Step: step, Command: cmd})
	fn := r.funcs[program]
	raw := slices.Clone(r.raw[program][step])
	failure := r.failures[program]
	exitCode := r.exitCodes[program]
	blocked := r.blockers[program]
	r.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	var out strings.Builder
	if fn != nil {
		for _, h := range fn(step, r.store) {
			path, err := r.store.Save(h)
			if err != nil {
				return nil, fmt.Errorf("scripted save: %w", err)
			}
			fmt.Fprintln(&out, path)
		}
	}
	for _, line := range raw {
		fmt.Fprintln(&out, line)
	}

	return &proc.Result{Stdout: []byte(out.String()), ExitCode: exitCode}, nil
}

// Calls returns the recorded invocations in call order.
func (r *ScriptedRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Steps returns the steps program was invoked with, in call order.
func (r *ScriptedRunner) Steps(program string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var steps []int
	for _, c := range r.calls {
		if c.Program == program {
			steps = append(steps, c.Step)
		}
	}
	return steps
}

// parseInvocation extracts the program and step from a module command line.
func parseInvocation(cmd proc.Command) (string, int, error) {
	program := cmd.Path
	args := cmd.Args
	if len(args) >= 2 && args[0] == "-jar" {
		program = args[1]
		args = args[2:]
	}
	if len(args) != 3 {
		return "", 0, fmt.Errorf("unexpected module arguments: %v", cmd.Args)
	}
	step, err := strconv.Atoi(args[2])
	if err != nil {
		return "", 0, fmt.Errorf("bad step argument %q: %w", args[2], err)
	}
	return program, step, nil
}
