// sshpanes - two-pane SSH/SCP file transfer tool (CLI binary).
package main

import (
	"os"

	"github.com/sshpanes/sshpanes/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
