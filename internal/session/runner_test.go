package session

import (
	"context"
	"strings"
	"testing"

	"github.com/sshpanes/sshpanes/internal/models"
)

func TestExecRunnerCapturesStreams(t *testing.T) {
	result, err := ExecRunner{}.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "echo out; echo diag >&2"},
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("Stdout = %q, want out", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "diag" {
		t.Errorf("Stderr = %q, want diag", result.Stderr)
	}
}

func TestExecRunnerNonZeroExitInResult(t *testing.T) {
	result, err := ExecRunner{}.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "exit 3"},
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for a clean non-zero exit", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestExecRunnerLaunchFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{Path: "/nonexistent/binary"}, nil)
	if err == nil {
		t.Error("Run() error = nil, want launch failure")
	}
}

func TestExecRunnerStreamsDiagnostics(t *testing.T) {
	diag := make(chan string, 16)
	var result models.SessionResult
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err = ExecRunner{}.Run(context.Background(), Command{
			Path: "sh",
			Args: []string{"-c", "echo chunk-one >&2; echo chunk-two >&2"},
		}, diag)
	}()

	var streamed strings.Builder
	for chunk := range diag {
		streamed.WriteString(chunk)
	}
	<-done

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := streamed.String()
	if !strings.Contains(got, "chunk-one") || !strings.Contains(got, "chunk-two") {
		t.Errorf("diagnostics = %q, want both chunks", got)
	}
	if result.Stderr != got {
		t.Errorf("Stderr = %q, want same text as the stream %q", result.Stderr, got)
	}
}

func TestExecRunnerDrainsFinalStderrBurst(t *testing.T) {
	// A large write immediately before exit must arrive in full; losing the
	// tail would corrupt the error detail for failed copies.
	const want = 1 << 20
	for i := 0; i < 20; i++ {
		result, err := ExecRunner{}.Run(context.Background(), Command{
			Path: "sh",
			Args: []string{"-c", "head -c 1048576 /dev/zero | tr '\\0' 'x' >&2"},
		}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := len(result.Stderr); got != want {
			t.Fatalf("iteration %d: len(Stderr) = %d, want %d", i, got, want)
		}
	}
}

func TestExecRunnerClosesDiagnosticsOnLaunchFailure(t *testing.T) {
	diag := make(chan string, 1)
	_, err := ExecRunner{}.Run(context.Background(), Command{Path: "/nonexistent/binary"}, diag)
	if err == nil {
		t.Fatal("Run() error = nil, want launch failure")
	}
	if _, open := <-diag; open {
		t.Error("diagnostics channel left open after launch failure")
	}
}

func TestEnvironWithReplacesExisting(t *testing.T) {
	t.Setenv("SSHPANES_TEST_VAR", "old")

	env := environWith("SSHPANES_TEST_VAR", "new")
	count := 0
	for _, kv := range env {
		if strings.HasPrefix(kv, "SSHPANES_TEST_VAR=") {
			count++
			if kv != "SSHPANES_TEST_VAR=new" {
				t.Errorf("env entry = %q, want SSHPANES_TEST_VAR=new", kv)
			}
		}
	}
	if count != 1 {
		t.Errorf("found %d entries, want exactly 1", count)
	}
}
