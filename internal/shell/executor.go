package shell

import "context"

// Result is the captured outcome of one shell command. A non-zero ExitCode
// is a normal result, not an error.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs shell commands against one target, locally or over SSH.
// Execute returns an error only for transport-level failures (unreachable
// host, rejected credentials); a failing command is reported through Result.
type Executor interface {
	Execute(ctx context.Context, command string) (Result, error)
	// Close releases the underlying transport. It is idempotent and safe
	// to call on an executor that never connected.
	Close() error
}
