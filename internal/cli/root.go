// Package cli provides the command-line interface for sshpanes.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/version"
)

var (
	// Global flags
	server   string
	username string
	keyPath  string
	verbose  bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information, taken from the canonical version package so ldflags
// overrides reach the CLI.
var (
	Version   = version.Version
	BuildTime = version.BuildTime
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sshpanes",
		Short: "sshpanes - two-pane file transfer over SSH/SCP",
		Long: `sshpanes ` + Version + ` - Built: ` + BuildTime + `
Moves files between the local filesystem and a remote host over SSH/SCP.

Remote I/O is delegated to the system ssh and scp executables; host keys
are not verified and no known-hosts state is persisted. Authentication is
public-key only, via a configured identity key or the ssh agent.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger("cli")
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&server, "server", "", "Remote server address (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&username, "user", "", "Remote username (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "", "Identity key path (overrides settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newLlsCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newPutCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger("cli")
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
