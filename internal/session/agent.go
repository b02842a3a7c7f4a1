package session

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/sshpanes/sshpanes/internal/logging"
)

// agentSocketEnv is the environment variable ssh reads the agent socket from.
const agentSocketEnv = "SSH_AUTH_SOCK"

// DiscoverAgentSocket finds the ssh-agent socket for the current session.
// GUI-launched processes do not inherit SSH_AUTH_SOCK, so when the variable
// is absent we ask the OS session service for it:
//
//   - darwin: launchctl getenv SSH_AUTH_SOCK
//   - linux:  systemctl --user show-environment
//
// Returns "" when no usable socket is found; agent auth is then simply
// unavailable.
func DiscoverAgentSocket(logger *logging.Logger) string {
	if logger == nil {
		logger = logging.Nop()
	}

	if sock := os.Getenv(agentSocketEnv); sock != "" {
		return sock
	}

	var sock string
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("launchctl", "getenv", agentSocketEnv).Output()
		if err != nil {
			logger.Debug().Err(err).Msg("launchctl agent socket lookup failed")
			return ""
		}
		sock = strings.TrimSpace(string(out))
	case "linux":
		out, err := exec.Command("systemctl", "--user", "show-environment").Output()
		if err != nil {
			logger.Debug().Err(err).Msg("systemctl agent socket lookup failed")
			return ""
		}
		for _, line := range strings.Split(string(out), "\n") {
			if v, ok := strings.CutPrefix(line, agentSocketEnv+"="); ok {
				sock = strings.TrimSpace(v)
				break
			}
		}
	default:
		return ""
	}

	if sock == "" {
		return ""
	}
	if !validAgentSocket(sock) {
		logger.Warn().Str("socket", sock).Msg("Discovered agent socket failed validation, ignoring")
		return ""
	}
	logger.Debug().Str("socket", sock).Msg("Discovered agent socket via session service")
	return sock
}

// validAgentSocket checks that the path is a socket owned by the current
// user before handing it to a child process.
func validAgentSocket(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFSOCK {
		return false
	}
	return st.Uid == uint32(unix.Getuid())
}
