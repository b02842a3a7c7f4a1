package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sshpanes/sshpanes/internal/browser"
	"github.com/sshpanes/sshpanes/internal/config"
	"github.com/sshpanes/sshpanes/internal/models"
)

var (
	dirColor     = color.New(color.FgBlue, color.Bold)
	symlinkColor = color.New(color.FgCyan)
)

// newLsCmd lists a remote directory.
func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			path := a.settings.Get().LastRemotePath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = "~"
			}

			entries, err := a.lister.List(GetContext(), a.target, path)
			if err != nil {
				return fmt.Errorf("listing %s failed: %w", path, err)
			}

			for _, e := range entries {
				printRemoteEntry(e)
			}

			// Remember the pane position for the next invocation.
			return a.settings.Update(func(s *config.Settings) { s.LastRemotePath = path })
		},
	}
}

// newLlsCmd lists a local directory, newest first.
func newLlsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lls [path]",
		Short: "List a local directory (modification order)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			entries, err := browser.Scan(dir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDirectory {
					dirColor.Printf("%s/\n", e.Name)
				} else {
					fmt.Printf("%s\t%d\n", e.Name, e.Size)
				}
			}
			return nil
		},
	}
}

func printRemoteEntry(e models.RemoteEntry) {
	switch e.Kind {
	case models.KindDirectory:
		dirColor.Printf("%s/\n", e.Name)
	case models.KindSymlink:
		symlinkColor.Printf("%s@\n", e.Name)
	default:
		fmt.Println(e.Name)
	}
}
