package module

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
	"github.com/roach88/idorch/internal/store"
)

// maxLineBytes caps a single stdout line; longer lines are dropped and reading
// continues with the next line.
const maxLineBytes = 1 << 20

// invoke runs cmd and collects the headers whose record paths it printed.
func invoke(ctx context.Context, o options, key Key, cmd proc.Command, step int) *header.Set {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	log := slog.With("module", key.CommandPath, "step", step)
	log.Debug("invoking module", "command", cmd.String())

	res, err := o.runner.Run(ctx, cmd)
	if err != nil {
		log.Warn("module invocation failed", "error", err)
		return header.NewSet()
	}
	if len(res.Stderr) > 0 {
		log.Debug("module stderr", "stderr", strings.TrimSpace(string(res.Stderr)))
	}
	if res.ExitCode != 0 {
		log.Warn("module exited with non-zero status", "exit_code", res.ExitCode)
	}

	return collect(log, res.Stdout, key.RunPath)
}

// collect reads one record path per stdout line. Relative paths are taken
// relative to the run path. Unreadable or malformed records are dropped.
func collect(log *slog.Logger, stdout []byte, runPath string) *header.Set {
	set := header.NewSet()

	for raw := range bytes.Lines(stdout) {
		if len(raw) > maxLineBytes {
			log.Warn("dropping oversized output line", "bytes", len(raw))
			continue
		}
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		path := line
		if !filepath.IsAbs(path) {
			path = filepath.Join(runPath, path)
		}
		log.Debug("module reported record", "path", path)

		h, err := store.ReadRecord(path)
		if err != nil {
			log.Warn("dropping reported header", "path", path, "error", err)
			continue
		}
		log.Debug("recovered header", "path", path, "category", h.Category, "id", h.ID())
		set.Add(h)
	}

	return set
}
