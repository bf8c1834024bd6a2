package executor

import (
	"context"
	"os/exec"
	"syscall"
)

// shellCommand builds the detached "/bin/sh <script>" invocation used by
// ShellScheduler.Submit, in its own process group so a walltime
// supervisor can terminate the whole chunk without taking down the
// controller (mirrors simulator.RunWithDeadline's process-group use).
func shellCommand(ctx context.Context, scriptPath string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "/bin/sh", scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}
