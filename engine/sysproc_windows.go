//go:build windows

package engine

import (
	"os/exec"
	"syscall"
)

// sysProcAttr creates the engine process in its own process group so
// console control events do not cascade into it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcess forcefully terminates the engine process.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
