package module

import (
	"context"
	"strconv"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
)

// Archive is a module packaged as a .jar and started with `java -jar`.
type Archive struct {
	key  Key
	opts options
}

// NewArchive binds the archive at commandPath to runPath.
func NewArchive(runPath, commandPath string, opts ...Option) *Archive {
	return &Archive{
		key:  Key{RunPath: runPath, CommandPath: commandPath},
		opts: buildOptions(opts),
	}
}

// UniqueIdentifier implements Module.
func (m *Archive) UniqueIdentifier() string { return m.key.CommandPath }

// RunPath implements Module.
func (m *Archive) RunPath() string { return m.key.RunPath }

// Key implements Module.
func (m *Archive) Key() Key { return m.key }

// IdentificationStep implements Module.
func (m *Archive) IdentificationStep(ctx context.Context, step int) *header.Set {
	cmd := proc.Command{
		Path: m.opts.java,
		Args: []string{"-jar", m.key.CommandPath, FlagNoIntegration, m.key.RunPath, strconv.Itoa(step)},
		Dir:  m.key.RunPath,
	}
	return invoke(ctx, m.opts, m.key, cmd, step)
}
