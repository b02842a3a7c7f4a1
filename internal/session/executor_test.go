package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sshpanes/sshpanes/internal/identity"
	"github.com/sshpanes/sshpanes/internal/models"
)

// recordingRunner captures the invocation instead of spawning a process.
type recordingRunner struct {
	lastCmd Command
	result  models.SessionResult
	err     error
}

func (r *recordingRunner) Run(ctx context.Context, cmd Command, diagnostics chan<- string) (models.SessionResult, error) {
	r.lastCmd = cmd
	if diagnostics != nil {
		close(diagnostics)
	}
	return r.result, r.err
}

// fixedKey resolves to a constant path.
type fixedKey struct{ path string }

func (k fixedKey) Resolve() (*identity.ResolvedKey, error) {
	if k.path == "" {
		return nil, nil
	}
	return &identity.ResolvedKey{Path: k.path, Release: func() {}}, nil
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func hasArg(args []string, arg string) bool {
	for _, a := range args {
		if a == arg {
			return true
		}
	}
	return false
}

func TestRunOptionTemplate(t *testing.T) {
	runner := &recordingRunner{}
	e := NewExecutor(runner, fixedKey{}, nil)
	target := Target{Server: "host.example", Username: "alice"}

	_, err := e.Run(context.Background(), target, "uptime", 15*time.Second)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	args := runner.lastCmd.Args
	for _, opt := range []string{
		"BatchMode=yes",
		"StrictHostKeyChecking=no",
		"UserKnownHostsFile=/dev/null",
		"GlobalKnownHostsFile=/dev/null",
		"PreferredAuthentications=publickey",
		"ConnectTimeout=15",
	} {
		if !hasArgPair(args, "-o", opt) {
			t.Errorf("args missing -o %s: %v", opt, args)
		}
	}
	if !hasArg(args, "-v") {
		t.Errorf("args missing -v: %v", args)
	}
	if !hasArg(args, "alice@host.example") {
		t.Errorf("args missing address: %v", args)
	}
	if !hasArg(args, "sh -c 'uptime'") {
		t.Errorf("args missing wrapped command: %v", args)
	}
	if runner.lastCmd.Path != "ssh" {
		t.Errorf("Path = %q, want ssh", runner.lastCmd.Path)
	}
}

func TestRunWithExplicitKeyAddsLegacyAlgorithms(t *testing.T) {
	runner := &recordingRunner{}
	e := NewExecutor(runner, fixedKey{path: "/keys/id_rsa"}, nil)

	_, err := e.Run(context.Background(), Target{Server: "h", Username: "u"}, "true", 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	args := runner.lastCmd.Args
	if !hasArgPair(args, "-i", "/keys/id_rsa") {
		t.Errorf("args missing -i: %v", args)
	}
	for _, opt := range []string{
		"IdentitiesOnly=yes",
		"PubkeyAcceptedAlgorithms=+ssh-rsa",
		"HostKeyAlgorithms=+ssh-rsa",
	} {
		if !hasArgPair(args, "-o", opt) {
			t.Errorf("args missing -o %s: %v", opt, args)
		}
	}
}

func TestCopyDownload(t *testing.T) {
	runner := &recordingRunner{}
	e := NewExecutor(runner, fixedKey{}, nil)
	target := Target{Server: "h", Username: "u"}

	_, err := e.Copy(context.Background(), target, CopyRequest{
		RemotePath: "/srv/my file.txt",
		LocalPath:  "/tmp/dl",
		FromRemote: true,
	})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	args := runner.lastCmd.Args
	if runner.lastCmd.Path != "scp" {
		t.Errorf("Path = %q, want scp", runner.lastCmd.Path)
	}
	if !hasArg(args, "-p") {
		t.Errorf("args missing -p: %v", args)
	}
	if hasArg(args, "-r") {
		t.Errorf("unexpected -r for a file: %v", args)
	}
	// Source precedes destination; the remote path is shell-quoted.
	wantRemote := "u@h:'/srv/my file.txt'"
	if len(args) < 2 || args[len(args)-2] != wantRemote || args[len(args)-1] != "/tmp/dl" {
		t.Errorf("endpoint args = %v, want [... %q /tmp/dl]", args, wantRemote)
	}
}

func TestCopyUploadDirectory(t *testing.T) {
	runner := &recordingRunner{}
	e := NewExecutor(runner, fixedKey{}, nil)

	_, err := e.Copy(context.Background(), Target{Server: "h", Username: "u"}, CopyRequest{
		RemotePath:  "~/dest",
		LocalPath:   "/tmp/dir",
		FromRemote:  false,
		IsDirectory: true,
	})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	args := runner.lastCmd.Args
	if !hasArg(args, "-r") {
		t.Errorf("args missing -r for a directory: %v", args)
	}
	if len(args) < 2 || args[len(args)-2] != "/tmp/dir" || args[len(args)-1] != "u@h:'~/dest'" {
		t.Errorf("endpoint args = %v, want [... /tmp/dir u@h:'~/dest']", args)
	}
}

func TestCopyNonZeroExitBecomesCommandError(t *testing.T) {
	runner := &recordingRunner{result: models.SessionResult{ExitCode: 1, Stderr: "scp: permission denied"}}
	e := NewExecutor(runner, fixedKey{}, nil)

	_, err := e.Copy(context.Background(), Target{Server: "h", Username: "u"}, CopyRequest{
		RemotePath: "/x", LocalPath: "/y", FromRemote: true,
	})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Copy() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 1 || cmdErr.Stderr != "scp: permission denied" {
		t.Errorf("CommandError = %+v, want exit 1 with stderr", cmdErr)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	runner := &recordingRunner{result: models.SessionResult{ExitCode: 1}}
	e := NewExecutor(runner, fixedKey{}, nil)

	result, err := e.Run(context.Background(), Target{Server: "h", Username: "u"}, "test -e /nope", 0)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for a non-zero exit", err)
	}
	if result.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", result.ExitCode)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
		{"$HOME `id`", "'$HOME `id`'"},
	}
	for _, tt := range tests {
		if got := ShellQuote(tt.in); got != tt.want {
			t.Errorf("ShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
