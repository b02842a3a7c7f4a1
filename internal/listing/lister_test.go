package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sshpanes/sshpanes/internal/models"
	"github.com/sshpanes/sshpanes/internal/session"
)

// fakeRunner records the command and returns a canned result.
type fakeRunner struct {
	lastCommand string
	result      models.SessionResult
	err         error
}

func (f *fakeRunner) Run(ctx context.Context, target session.Target, command string, timeout time.Duration) (models.SessionResult, error) {
	f.lastCommand = command
	return f.result, f.err
}

func TestListCommandPlainPath(t *testing.T) {
	got := listCommand("/var/log")
	want := "ls -lF --group-directories-first -- '/var/log'"
	if got != want {
		t.Errorf("listCommand(/var/log) = %q, want %q", got, want)
	}
}

func TestListCommandHomeShorthand(t *testing.T) {
	got := listCommand("~")
	want := "cd && ls -lF --group-directories-first"
	if got != want {
		t.Errorf("listCommand(~) = %q, want %q", got, want)
	}
}

func TestListCommandHomeRelativePath(t *testing.T) {
	got := listCommand("~/projects")
	want := "cd && ls -lF --group-directories-first -- 'projects'"
	if got != want {
		t.Errorf("listCommand(~/projects) = %q, want %q", got, want)
	}
}

func TestListParsesOutput(t *testing.T) {
	runner := &fakeRunner{result: models.SessionResult{
		Stdout: "drwxr-xr-x 2 u g 4096 Jan 5 10:00 data/\n-rw-r--r-- 1 u g 12 Jan 5 10:00 a.txt\n",
	}}
	l := NewLister(runner, nil)

	entries, err := l.List(context.Background(), session.Target{Server: "host", Username: "u"}, "/srv")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "data" || entries[1].Name != "a.txt" {
		t.Errorf("List() entries = %v, want [data a.txt]", entries)
	}
}

func TestListSurfacesCommandFailure(t *testing.T) {
	runner := &fakeRunner{result: models.SessionResult{ExitCode: 2, Stderr: "ls: cannot access"}}
	l := NewLister(runner, nil)

	_, err := l.List(context.Background(), session.Target{}, "/nope")
	if err == nil {
		t.Fatal("List() error = nil, want failure for non-zero exit")
	}
	var cmdErr *session.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("List() error = %v, want *session.CommandError", err)
	}
	if cmdErr.ExitCode != 2 || cmdErr.Stderr != "ls: cannot access" {
		t.Errorf("CommandError = %+v, want exit 2 with stderr preserved", cmdErr)
	}
}

func TestExists(t *testing.T) {
	runner := &fakeRunner{result: models.SessionResult{ExitCode: 0}}
	l := NewLister(runner, nil)

	ok, err := l.Exists(context.Background(), session.Target{}, "/tmp/it's here")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists() = false, want true for exit 0")
	}
	want := `test -e '/tmp/it'\''s here'`
	if runner.lastCommand != want {
		t.Errorf("probe command = %q, want %q", runner.lastCommand, want)
	}

	runner.result = models.SessionResult{ExitCode: 1}
	ok, err = l.Exists(context.Background(), session.Target{}, "/absent")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists() = true, want false for exit 1")
	}
}
