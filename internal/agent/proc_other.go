//go:build !unix

package agent

import "os/exec"

// killProcessGroup is a no-op; cmd.WaitDelay still bounds Run.
func killProcessGroup(cmd *exec.Cmd) {}
