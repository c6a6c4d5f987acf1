package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// waitDelay bounds how long output copying may continue after cancellation.
const waitDelay = 2 * time.Second

// ErrToolUnavailable indicates the build tool could not be started.
var ErrToolUnavailable = errors.New("build tool unavailable")

// Output is what a finished process produced.
type Output struct {
	Stdout   string
	Stderr   string
	Combined string
	ExitCode int
}

// CommandRunner abstracts process execution for testability.
// A process that runs and exits non-zero is not an error: the exit code is
// reported in Output. Errors mean the process could not be started or the
// context ended first.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (*Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a CommandRunner that executes real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in dir, capturing stdout and stderr separately
// and interleaved.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (*Output, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// grandchildren holding the pipes must not outlive a cancelled build
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	combined := &lockedBuffer{}
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = io.MultiWriter(&stderr, combined)

	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
	}

	if ctx.Err() != nil {
		return out, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	default:
		return out, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, name, err)
	}
}

// lockedBuffer lets stdout and stderr copy goroutines share one buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
