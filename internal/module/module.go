package module

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
)

// FlagNoIntegration is the first argument of every invocation; it asks the
// module for batch, non-interactive behavior.
const FlagNoIntegration = "--no-integration"

// ArchiveExt marks command paths launched through the Java launcher.
const ArchiveExt = ".jar"

// DefaultJava is the launcher used for archives unless WithJava overrides it.
const DefaultJava = "java"

// Module is one discovered identification module.
type Module interface {
	// UniqueIdentifier names the module in diagnostics. Never used for
	// deduplication; compare Key values instead.
	UniqueIdentifier() string

	// RunPath is the workspace shared by every module of a run.
	RunPath() string

	// Key is the structural identity (run path, command path).
	Key() Key

	// IdentificationStep runs the module once for step and returns the
	// headers it reported. An empty set is a normal result.
	IdentificationStep(ctx context.Context, step int) *header.Set
}

// Key identifies a module handle. Two handles with equal keys are the same
// module.
type Key struct {
	RunPath     string
	CommandPath string
}

// Option configures module handles.
type Option func(*options)

type options struct {
	runner  proc.Runner
	java    string
	timeout time.Duration
}

func defaultOptions() options {
	return options{
		runner: proc.ExecRunner{},
		java:   DefaultJava,
	}
}

// WithRunner sets the process runner. Tests pass a scripted fake.
func WithRunner(r proc.Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithJava sets the launcher command for archive modules.
func WithJava(cmd string) Option {
	return func(o *options) {
		if cmd != "" {
			o.java = cmd
		}
	}
}

// WithStepTimeout bounds each invocation. A module that runs longer is
// killed and contributes no headers for that step. Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// IsArchive reports whether commandPath is launched through the Java launcher.
func IsArchive(commandPath string) bool {
	return strings.EqualFold(filepath.Ext(commandPath), ArchiveExt)
}

// New returns the handle variant matching commandPath's extension.
func New(runPath, commandPath string, opts ...Option) Module {
	if IsArchive(commandPath) {
		return NewArchive(runPath, commandPath, opts...)
	}
	return NewExecutable(runPath, commandPath, opts...)
}

// Kind names the launch strategy of m: "archive", "executable" or "unknown".
func Kind(m Module) string {
	switch m.(type) {
	case *Archive:
		return "archive"
	case *Executable:
		return "executable"
	default:
		return "unknown"
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
