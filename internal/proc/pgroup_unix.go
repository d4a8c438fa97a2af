//go:build unix

package proc

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the child in its own process group and makes
// cancellation kill the group (negative PID) rather than only the leader.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
