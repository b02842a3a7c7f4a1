package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sshpanes/sshpanes/internal/models"
)

// Command describes one subprocess invocation.
type Command struct {
	// Path is the executable ("ssh", "scp").
	Path string

	// Args are the arguments, excluding the executable name.
	Args []string

	// Env is the full child environment. Nil inherits the parent's.
	Env []string
}

// Runner launches subprocesses. The interface exists so tests can substitute
// a fake instead of spawning real ssh processes.
type Runner interface {
	// Run executes the command and blocks until both output streams are
	// drained and the process has exited. When diagnostics is non-nil,
	// stderr is delivered to it in chunks as it is produced, before the
	// process exits; Run closes the channel when the stream ends.
	//
	// A non-zero exit is reported in the result, not as an error. The error
	// return covers launch failures only.
	Run(ctx context.Context, cmd Command, diagnostics chan<- string) (models.SessionResult, error)
}

// ExecRunner runs commands with os/exec. Context cancellation kills the
// child process.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, cmd Command, diagnostics chan<- string) (models.SessionResult, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	if cmd.Env != nil {
		c.Env = cmd.Env
	}

	var stdout bytes.Buffer
	c.Stdout = &stdout

	stderrPipe, err := c.StderrPipe()
	if err != nil {
		if diagnostics != nil {
			close(diagnostics)
		}
		return models.SessionResult{}, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := c.Start(); err != nil {
		if diagnostics != nil {
			close(diagnostics)
		}
		return models.SessionResult{}, fmt.Errorf("failed to launch %s: %w", cmd.Path, err)
	}

	// Drain stderr incrementally so progress can be reported before exit.
	var stderr bytes.Buffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		if diagnostics != nil {
			defer close(diagnostics)
		}
		buf := make([]byte, 4096)
		for {
			n, readErr := stderrPipe.Read(buf)
			if n > 0 {
				chunk := string(buf[:n])
				stderr.WriteString(chunk)
				if diagnostics != nil {
					diagnostics <- chunk
				}
			}
			if readErr != nil {
				return
			}
		}
	}()

	// Wait closes the pipe's read end; reading must finish first or a final
	// stderr burst can be discarded. The drain goroutine sees EOF once the
	// child's write end closes, so waiting on it here cannot deadlock.
	<-drained
	waitErr := c.Wait()

	result := models.SessionResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = int32(exitErr.ExitCode())
			return result, nil
		}
		return result, fmt.Errorf("%s did not run: %w", cmd.Path, waitErr)
	}
	return result, nil
}

// environWith returns the current environment with key set to value,
// replacing any existing assignment.
func environWith(key, value string) []string {
	env := os.Environ()
	prefix := key + "="
	for i, kv := range env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
