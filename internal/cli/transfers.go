package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sshpanes/sshpanes/internal/config"
	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/models"
	"github.com/sshpanes/sshpanes/internal/orchestrator"
	"github.com/sshpanes/sshpanes/internal/state"
)

// newGetCmd downloads remote items into a local directory.
func newGetCmd() *cobra.Command {
	var remoteDir string
	var localDir string

	cmd := &cobra.Command{
		Use:   "get NAME...",
		Short: "Download remote files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			snap := a.settings.Get()

			remoteDir = firstNonEmpty(remoteDir, snap.LastRemotePath, "~")
			localDir = firstNonEmpty(localDir, snap.LastLocalPath, ".")
			localDir, err = filepath.Abs(localDir)
			if err != nil {
				return err
			}

			// A fresh listing classifies each requested name; scp needs to
			// know up front whether to recurse.
			listed, err := a.lister.List(GetContext(), a.target, remoteDir)
			if err != nil {
				return fmt.Errorf("listing %s failed: %w", remoteDir, err)
			}
			items, err := matchRemoteItems(listed, args)
			if err != nil {
				return err
			}

			req := orchestrator.Request{
				Direction: orchestrator.DirectionDownload,
				Items:     items,
				RemoteDir: remoteDir,
				LocalDir:  localDir,
			}
			statuses, err := a.runBatch(req)
			if err != nil {
				return err
			}
			if err := a.settings.Update(func(s *config.Settings) {
				s.LastRemotePath = remoteDir
				s.LastLocalPath = localDir
			}); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to persist pane paths")
			}
			return batchResult(statuses)
		},
	}

	cmd.Flags().StringVar(&remoteDir, "remote-dir", "", "Remote directory holding the items (defaults to the last listed)")
	cmd.Flags().StringVar(&localDir, "local-dir", "", "Local destination directory (defaults to the last used)")
	return cmd
}

// newPutCmd uploads local files or directories into a remote directory.
func newPutCmd() *cobra.Command {
	var remoteDir string

	cmd := &cobra.Command{
		Use:   "put PATH...",
		Short: "Upload local files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			snap := a.settings.Get()
			remoteDir = firstNonEmpty(remoteDir, snap.LastRemotePath, "~")

			localDir, paths, err := splitLocalBatch(args)
			if err != nil {
				return err
			}
			items, err := orchestrator.ItemsFromLocalPaths(paths)
			if err != nil {
				return err
			}

			req := orchestrator.Request{
				Direction: orchestrator.DirectionUpload,
				Items:     items,
				RemoteDir: remoteDir,
				LocalDir:  localDir,
			}
			statuses, err := a.runBatch(req)
			if err != nil {
				return err
			}
			if err := a.settings.Update(func(s *config.Settings) {
				s.LastRemotePath = remoteDir
				s.LastLocalPath = localDir
			}); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to persist pane paths")
			}
			return batchResult(statuses)
		},
	}

	cmd.Flags().StringVar(&remoteDir, "remote-dir", "", "Remote destination directory (defaults to the last listed)")
	return cmd
}

// runBatch wires panes, refresher and progress rendering around one
// orchestrator run.
func (a *app) runBatch(req orchestrator.Request) ([]orchestrator.Snapshot, error) {
	remotePane := state.NewRemotePane(a.eventBus, req.RemoteDir)
	localPane := state.NewLocalPane(a.eventBus, req.LocalDir)
	controller := state.NewController(remotePane, localPane, a.lister, a.target, logging.NewLogger("state"))

	orch := orchestrator.New(
		a.executor,
		a.lister,
		TerminalConfirmer{},
		state.RefreshAdapter{Controller: controller},
		a.eventBus,
		logging.NewLogger("transfer"),
	)

	reporter := newProgressReporter(a.eventBus)
	statuses, err := orch.Run(GetContext(), a.target, req)
	a.eventBus.Close()
	reporter.wait()

	if errors.Is(err, orchestrator.ErrBatchDeclined) {
		fmt.Println("Transfer aborted; nothing was copied.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fmt.Println()
	printSummary(statuses)
	return statuses, nil
}

// matchRemoteItems resolves requested names against a listing so each item
// carries its real kind.
func matchRemoteItems(listed []models.RemoteEntry, names []string) ([]models.RemoteEntry, error) {
	byName := make(map[string]models.RemoteEntry, len(listed))
	for _, e := range listed {
		byName[e.Name] = e
	}

	items := make([]models.RemoteEntry, 0, len(names))
	for _, n := range names {
		e, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("no such remote entry: %s", n)
		}
		items = append(items, e)
	}
	return items, nil
}

// splitLocalBatch turns path arguments into one containing directory plus
// absolute paths. The two-pane model transfers out of a single directory,
// so mixed parents are rejected up front.
func splitLocalBatch(args []string) (string, []string, error) {
	paths := make([]string, 0, len(args))
	dir := ""
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return "", nil, err
		}
		parent := filepath.Dir(abs)
		if dir == "" {
			dir = parent
		} else if dir != parent {
			return "", nil, fmt.Errorf("all files must live in the same directory (%s vs %s)", dir, parent)
		}
		paths = append(paths, abs)
	}
	return dir, paths, nil
}

// batchResult reduces final statuses to the command exit status.
func batchResult(statuses []orchestrator.Snapshot) error {
	failed := 0
	for _, s := range statuses {
		if s.State == orchestrator.StateFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", failed, len(statuses))
	}
	return nil
}
