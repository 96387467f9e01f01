//go:build !windows

package runtime

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detachProcessGroup places cmd at the head of its own process group so a
// later killProcessGroup reaches every descendant, including backgrounded
// ones the shell spawned and returned from.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the whole group. The minus sign tells
// the kernel the target is a PGID rather than a PID. Grounded on
// jesseduffield-lazydocker's OSCommand.Kill, which does the same thing to
// reach children that a parent-only kill would orphan.
func killProcessGroup(pid int) error {
	err := unix.Kill(-pid, unix.SIGKILL)
	if err == unix.ESRCH {
		return nil // already gone
	}
	return err
}
