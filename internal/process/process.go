// Package process manages the lifetime of external tool processes.
package process

import "os/exec"

// CancelTree returns a Cmd.Cancel function that kills the process group of
// cmd instead of only the direct child.
func CancelTree(cmd *exec.Cmd) func() error {
	return func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}
}
