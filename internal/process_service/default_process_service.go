package process_service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/schema"
)

const shellPath = "/bin/sh"

// DefaultProcessService runs children on the host, killing them when the
// caller's context is cancelled so a dropped connection never leaves an
// orphan behind.
type DefaultProcessService struct {
	ls log_service.LogService
}

func NewDefaultProcessService(ls log_service.LogService) *DefaultProcessService {
	return &DefaultProcessService{ls: ls}
}

func (s *DefaultProcessService) Spawn(ctx context.Context, req schema.SpawnRequest) (schema.ProcessResult, error) {
	s.ls.Debug(log_service.LogEvent{
		Message:  "Spawning process",
		Metadata: map[string]any{"executable": req.Command[0], "args": len(req.Command) - 1},
	})

	return s.run(ctx, runSpec{
		name:      req.Command[0],
		args:      req.Command[1:],
		cwd:       req.Cwd,
		env:       req.Env,
		stdio:     normalizeStdio(req.Stdio),
		input:     req.Input,
		timeoutMs: req.TimeoutMs,
	})
}

func (s *DefaultProcessService) Exec(ctx context.Context, req schema.ExecRequest) (schema.ProcessResult, error) {
	s.ls.Debug(log_service.LogEvent{
		Message:  "Executing shell command",
		Metadata: map[string]any{"shell": shellPath},
	})

	return s.run(ctx, runSpec{
		name:      shellPath,
		args:      []string{"-c", req.Command},
		cwd:       req.Cwd,
		env:       req.Env,
		stdio:     schema.StdioConfig{Stdin: schema.StdioIgnore, Stdout: schema.StdioPipe, Stderr: schema.StdioPipe},
		timeoutMs: req.TimeoutMs,
	})
}

type runSpec struct {
	name      string
	args      []string
	cwd       string
	env       map[string]string
	stdio     schema.StdioConfig
	input     string
	timeoutMs int64
}

func normalizeStdio(stdio schema.StdioConfig) schema.StdioConfig {
	if stdio.Stdin == "" {
		stdio.Stdin = schema.StdioPipe
	}
	if stdio.Stdout == "" {
		stdio.Stdout = schema.StdioPipe
	}
	if stdio.Stderr == "" {
		stdio.Stderr = schema.StdioPipe
	}
	return stdio
}

func (s *DefaultProcessService) run(ctx context.Context, spec runSpec) (schema.ProcessResult, error) {
	if spec.timeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(spec.timeoutMs)*time.Millisecond)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.name, spec.args...)
	cmd.WaitDelay = 5 * time.Second
	if spec.cwd != "" {
		cmd.Dir = spec.cwd
	}
	cmd.Env = mergedEnv(spec.env)

	switch spec.stdio.Stdin {
	case schema.StdioPipe:
		if spec.input != "" {
			cmd.Stdin = strings.NewReader(spec.input)
		}
	case schema.StdioInherit:
		cmd.Stdin = os.Stdin
	}

	// os/exec must own the copy goroutines: WaitDelay force-closes the parent
	// pipe ends only for pipes it created itself. Both streams drain
	// concurrently, and a grandchild that inherited the pipes and outlives
	// the child cannot hold the call open past the grace period.
	var stdoutBuf, stderrBuf bytes.Buffer

	switch spec.stdio.Stdout {
	case schema.StdioPipe:
		cmd.Stdout = &stdoutBuf
	case schema.StdioInherit:
		cmd.Stdout = os.Stdout
	}

	switch spec.stdio.Stderr {
	case schema.StdioPipe:
		cmd.Stderr = &stderrBuf
	case schema.StdioInherit:
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		s.ls.Warn(log_service.LogEvent{
			Message:  "Process failed to start",
			Metadata: map[string]any{"executable": spec.name, "error": err.Error()},
		})
		return schema.ProcessResult{}, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	waitErr := cmd.Wait()

	result := schema.ProcessResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if waitErr == nil {
		code := 0
		result.ExitCode = &code
		result.Success = true
		return result, nil
	}

	// The process itself exited cleanly but an inheritor of its pipes held
	// them open past the WaitDelay grace; the captured output is complete up
	// to the forced close.
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		code := 0
		result.ExitCode = &code
		result.Success = true
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal (including the context kill): exitCode is
			// null, not an error.
			s.ls.Debug(log_service.LogEvent{
				Message:  "Process killed by signal",
				Metadata: map[string]any{"executable": spec.name},
			})
			return result, nil
		}
		result.ExitCode = &code
		return result, nil
	}

	return schema.ProcessResult{}, waitErr
}

// mergedEnv layers caller-supplied variables over the inherited environment;
// caller keys win. A nil return keeps the parent environment untouched.
func mergedEnv(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	env := os.Environ()
	for key, value := range overrides {
		env = append(env, key+"="+value)
	}
	// os/exec keeps the last value for duplicate keys.
	return env
}
