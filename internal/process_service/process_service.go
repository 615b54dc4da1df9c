package process_service

import (
	"context"

	"github.com/supervise-dev/bridge/internal/schema"
)

// ProcessService runs child processes to completion. Each invocation moves
// through Created -> Running -> Exited(code) | Killed(signal); only the
// terminal state is observable. A ProcessResult is produced only once a
// process actually started and terminated; launch failures fail the call
// instead. A non-zero exit is a normal result, not an error.
type ProcessService interface {
	// Spawn launches the argument vector directly: no shell interpretation,
	// no globbing, no word-splitting.
	Spawn(ctx context.Context, req schema.SpawnRequest) (schema.ProcessResult, error)

	// Exec runs a single command line through the shell (pipes, redirects,
	// globbing, variable expansion all apply).
	Exec(ctx context.Context, req schema.ExecRequest) (schema.ProcessResult, error)
}
