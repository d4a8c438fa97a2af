//go:build !unix

package proc

import "os/exec"

// configureProcessGroup keeps the exec.CommandContext default of killing the
// child process only.
func configureProcessGroup(cmd *exec.Cmd) {}
