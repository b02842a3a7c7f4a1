package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sshpanes/sshpanes/internal/identity"
	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/models"
)

// Target identifies the remote account a session runs against.
type Target struct {
	Server   string
	Username string

	// Passphrase unlocks the identity key through the key agent/keychain.
	// The subprocess runs in BatchMode and never prompts; the passphrase is
	// persisted in the credential store, not passed on the command line.
	Passphrase string
}

// Address returns the user@host form.
func (t Target) Address() string {
	return t.Username + "@" + t.Server
}

// KeyResolver produces the identity key for a session, if any.
type KeyResolver interface {
	Resolve() (*identity.ResolvedKey, error)
}

// Executor invokes the ssh and scp executables with a fixed option
// template: no interactive prompts, no host-key verification or known-hosts
// persistence, public-key-only authentication, verbose diagnostics.
type Executor struct {
	runner Runner
	keys   KeyResolver
	logger *logging.Logger

	// SSHPath and SCPPath override the executable names. Defaults "ssh"
	// and "scp".
	SSHPath string
	SCPPath string

	agentOnce sync.Once
	agentSock string
}

// NewExecutor creates an Executor. keys may be nil to force agent auth.
func NewExecutor(runner Runner, keys KeyResolver, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{
		runner:  runner,
		keys:    keys,
		logger:  logger,
		SSHPath: "ssh",
		SCPPath: "scp",
	}
}

// Run executes a remote command under a POSIX shell and returns the
// structured result. A non-zero exit is reported in the result; the error
// return covers launch failures. timeout is advisory connect-phase only;
// cancel ctx to actually stop a running command.
func (e *Executor) Run(ctx context.Context, target Target, command string, timeout time.Duration) (models.SessionResult, error) {
	key, err := e.resolveKey()
	if err != nil {
		return models.SessionResult{}, err
	}
	defer key.Release()

	args := e.commonOptions(key.Path, timeout)
	args = append(args, target.Address(), "sh -c "+ShellQuote(command))

	e.logger.Debug().Str("server", target.Server).Str("command", command).Msg("Running remote command")
	return e.runner.Run(ctx, Command{Path: e.SSHPath, Args: args, Env: e.environment()}, nil)
}

// CopyRequest describes one scp invocation.
type CopyRequest struct {
	// RemotePath and LocalPath are the two endpoints; FromRemote selects
	// the direction.
	RemotePath string
	LocalPath  string
	FromRemote bool

	// IsDirectory enables recursive copy.
	IsDirectory bool

	// Diagnostics receives the scp diagnostic stream in chunks while the
	// process runs. Closed by the executor when the stream ends. May be nil.
	Diagnostics chan<- string
}

// Copy runs scp with the shared auth/host-key options, preserving
// timestamps, recursing for directories. Returns a *CommandError when scp
// exits non-zero, with the diagnostic text as the detail.
func (e *Executor) Copy(ctx context.Context, target Target, req CopyRequest) (models.SessionResult, error) {
	key, err := e.resolveKey()
	if err != nil {
		if req.Diagnostics != nil {
			close(req.Diagnostics)
		}
		return models.SessionResult{}, err
	}
	defer key.Release()

	args := e.commonOptions(key.Path, 0)
	args = append(args, "-p")
	if req.IsDirectory {
		args = append(args, "-r")
	}

	// The remote path crosses a remote shell; quote it so spaces survive.
	remoteSpec := target.Address() + ":" + ShellQuote(req.RemotePath)
	if req.FromRemote {
		args = append(args, remoteSpec, req.LocalPath)
	} else {
		args = append(args, req.LocalPath, remoteSpec)
	}

	e.logger.Debug().
		Str("server", target.Server).
		Str("remote", req.RemotePath).
		Str("local", req.LocalPath).
		Bool("from_remote", req.FromRemote).
		Msg("Running copy")

	result, err := e.runner.Run(ctx, Command{Path: e.SCPPath, Args: args, Env: e.environment()}, req.Diagnostics)
	if err != nil {
		return result, err
	}
	if result.ExitCode != 0 {
		return result, &CommandError{Operation: "scp", ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}

// resolveKey consults the key resolver, normalizing the no-key case to a
// no-op release so callers can defer unconditionally.
func (e *Executor) resolveKey() (*identity.ResolvedKey, error) {
	if e.keys == nil {
		return &identity.ResolvedKey{Release: func() {}}, nil
	}
	key, err := e.keys.Resolve()
	if err != nil {
		return nil, fmt.Errorf("identity resolution failed: %w", err)
	}
	if key == nil {
		return &identity.ResolvedKey{Release: func() {}}, nil
	}
	return key, nil
}

// commonOptions builds the option set shared by ssh and scp. Host keys are
// never verified or persisted: every run is evaluated with no stored host
// identity.
func (e *Executor) commonOptions(keyPath string, timeout time.Duration) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "GlobalKnownHostsFile=/dev/null",
		"-o", "PreferredAuthentications=publickey",
		"-v",
	}
	if timeout > 0 {
		secs := int(timeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		args = append(args, "-o", "ConnectTimeout="+strconv.Itoa(secs))
	}
	if keyPath != "" {
		// Older servers only offer ssh-rsa; with an explicit key we accept
		// the legacy algorithms rather than fail the handshake.
		args = append(args,
			"-i", keyPath,
			"-o", "IdentitiesOnly=yes",
			"-o", "PubkeyAcceptedAlgorithms=+ssh-rsa",
			"-o", "HostKeyAlgorithms=+ssh-rsa",
		)
	}
	return args
}

// environment injects a discovered agent socket when the process did not
// inherit one.
func (e *Executor) environment() []string {
	e.agentOnce.Do(func() {
		e.agentSock = DiscoverAgentSocket(e.logger)
	})
	if e.agentSock == "" {
		return nil
	}
	return environWith(agentSocketEnv, e.agentSock)
}

// ShellQuote wraps s in single quotes for a POSIX shell, escaping embedded
// single quotes.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
