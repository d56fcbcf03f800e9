//go:build !unix

package handlers

import "os/exec"

// configureProcess keeps the default exec.CommandContext behavior, which
// kills only the shell. WaitDelay bounds the wait for any children holding
// the output pipes.
func configureProcess(cmd *exec.Cmd) {}
