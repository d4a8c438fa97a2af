package module

import (
	"context"
	"strconv"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
)

// Executable is a module run directly as a program.
type Executable struct {
	key  Key
	opts options
}

// NewExecutable binds the program at commandPath to runPath.
func NewExecutable(runPath, commandPath string, opts ...Option) *Executable {
	return &Executable{
		key:  Key{RunPath: runPath, CommandPath: commandPath},
		opts: buildOptions(opts),
	}
}

// UniqueIdentifier implements Module.
func (m *Executable) UniqueIdentifier() string { return m.key.CommandPath }

// RunPath implements Module.
func (m *Executable) RunPath() string { return m.key.RunPath }

// Key implements Module.
func (m *Executable) Key() Key { return m.key }

// IdentificationStep implements Module.
func (m *Executable) IdentificationStep(ctx context.Context, step int) *header.Set {
	cmd := proc.Command{
		Path: m.key.CommandPath,
		Args: []string{FlagNoIntegration, m.key.RunPath, strconv.Itoa(step)},
		Dir:  m.key.RunPath,
	}
	return invoke(ctx, m.opts, m.key, cmd, step)
}
