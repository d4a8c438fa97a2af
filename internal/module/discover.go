package module

import (
	"cmp"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// Discover returns one handle for every regular file in dir, bound to
// runPath. Symbolic links are resolved and the handle records the target;
// directories, dangling links and other non-files are skipped. Links that
// resolve to the same file yield a single handle.
//
// The result is sorted by command path, so scans of an unchanged directory
// are identical. An unreadable dir yields no modules.
func Discover(dir, runPath string, opts ...Option) []Module {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("module directory not readable", "dir", dir, "error", err)
		return nil
	}

	seen := make(map[Key]bool, len(entries))
	var modules []Module
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			slog.Debug("skipping unresolvable module entry", "path", path, "error", err)
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if abs, err := filepath.Abs(resolved); err == nil {
			resolved = abs
		}

		key := Key{RunPath: runPath, CommandPath: resolved}
		if seen[key] {
			continue
		}
		seen[key] = true
		modules = append(modules, New(runPath, resolved, opts...))
	}

	slices.SortFunc(modules, func(a, b Module) int {
		return cmp.Compare(a.Key().CommandPath, b.Key().CommandPath)
	})

	slog.Debug("discovered modules", "dir", dir, "count", len(modules))
	return modules
}
