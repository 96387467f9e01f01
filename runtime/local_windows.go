//go:build windows

package runtime

import (
	"os"
	"os/exec"
)

// detachProcessGroup is a no-op on Windows; killProcessGroup falls back to
// killing the process directly since this module does not depend on
// windows-specific job-object APIs for group teardown.
func detachProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	return proc.Kill()
}
