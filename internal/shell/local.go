package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// LocalExecutor runs commands through the local shell.
type LocalExecutor struct{}

func NewLocalExecutor() *LocalExecutor { return &LocalExecutor{} }

func (l *LocalExecutor) Execute(ctx context.Context, command string) (Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	// Failed to launch the shell at all. Fold the failure into stderr so
	// callers see an ordinary failed command.
	res.ExitCode = 1
	if res.Stderr == "" {
		res.Stderr = err.Error()
	}
	return res, nil
}

func (l *LocalExecutor) Close() error { return nil }
