package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/models"
	"github.com/sshpanes/sshpanes/internal/session"
	"github.com/sshpanes/sshpanes/internal/util/remotepath"
)

// CommandRunner is the slice of the session executor the lister needs.
type CommandRunner interface {
	Run(ctx context.Context, target session.Target, command string, timeout time.Duration) (models.SessionResult, error)
}

// ListTimeout is the advisory connect timeout for listing commands.
const ListTimeout = 15 * time.Second

// Lister fetches and parses remote directory listings.
type Lister struct {
	runner CommandRunner
	logger *logging.Logger
}

// NewLister creates a Lister.
func NewLister(runner CommandRunner, logger *logging.Logger) *Lister {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Lister{runner: runner, logger: logger}
}

// List returns the entries of a remote directory. A failing listing command
// surfaces as an error rather than an empty listing; unparseable lines are
// still silently discarded.
func (l *Lister) List(ctx context.Context, target session.Target, path string) ([]models.RemoteEntry, error) {
	command := listCommand(path)

	result, err := l.runner.Run(ctx, target, command, ListTimeout)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, &session.CommandError{Operation: "ssh", ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	entries := Parse(result.Stdout)
	l.logger.Debug().Str("path", path).Int("entries", len(entries)).Msg("Remote listing parsed")
	return entries, nil
}

// Exists probes whether a remote path exists.
func (l *Lister) Exists(ctx context.Context, target session.Target, path string) (bool, error) {
	command := "test -e " + session.ShellQuote(path)
	result, err := l.runner.Run(ctx, target, command, ListTimeout)
	if err != nil {
		return false, fmt.Errorf("existence probe failed: %w", err)
	}
	return result.ExitCode == 0, nil
}

// listCommand builds the listing command for a path. Home-relative paths
// are expanded by changing into the home directory first: tilde expansion
// does not happen inside a quoted argument, so "~" would otherwise be
// listed as a literal directory name.
func listCommand(path string) string {
	const listFlags = "ls -lF --group-directories-first"

	if remotepath.IsHomeRelative(path) {
		remainder := remotepath.HomeRemainder(path)
		if remainder == "" {
			return "cd && " + listFlags
		}
		return "cd && " + listFlags + " -- " + session.ShellQuote(remainder)
	}
	return listFlags + " -- " + session.ShellQuote(path)
}
