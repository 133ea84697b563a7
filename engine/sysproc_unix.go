//go:build !windows

package engine

import (
	"os/exec"
	"syscall"
)

// sysProcAttr detaches the engine process from the parent process group so
// terminal signals do not cascade into it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess forcefully terminates the engine process group.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Negative pid addresses the whole process group.
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
