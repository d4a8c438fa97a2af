// Package proc runs external programs and captures their output.
//
// The Runner interface is the only way the rest of the module starts
// processes, so tests can substitute a scripted fake for real binaries.
package proc

import (
	"context"
	"strings"
)

// Command describes one process to start.
type Command struct {
	// Path is the program to execute. Bare names are looked up in PATH.
	Path string

	// Args are passed after Path.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is the captured outcome of a process that ran to completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a command and waits for it.
//
// Run returns an error only when the process could not be started or was
// interrupted by ctx. A non-zero exit status is reported in Result.ExitCode,
// not as an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}
