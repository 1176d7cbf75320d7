//go:build !windows

package ping

import "os/exec"

// hideWindow is a no-op: only windows opens a console for child processes.
func hideWindow(*exec.Cmd) {}
