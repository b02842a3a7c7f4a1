// Package session invokes the ssh/scp executables and turns their results
// into structured values. All remote I/O goes through these subprocesses;
// no wire protocol is implemented here.
package session

import "fmt"

// CommandError is returned when a remote shell or copy subprocess exits
// non-zero. The diagnostic stream text is the error detail: with -v enabled
// it is the only useful record of what the remote side rejected.
type CommandError struct {
	Operation string // "ssh" or "scp"
	ExitCode  int32
	Stderr    string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Operation, e.ExitCode, e.Stderr)
}
