package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sshpanes/sshpanes/internal/models"
)

// ItemsFromLocalPaths builds upload batch items from absolute local paths,
// classifying each by stat. A missing path fails the collection; nothing
// has started yet, so this is cheap to surface.
func ItemsFromLocalPaths(paths []string) ([]models.RemoteEntry, error) {
	items := make([]models.RemoteEntry, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot transfer %s: %w", p, err)
		}
		kind := models.KindFile
		if info.IsDir() {
			kind = models.KindDirectory
		}
		name := filepath.Base(p)
		items = append(items, models.RemoteEntry{
			ID:           name,
			Name:         name,
			Kind:         kind,
			RelativePath: name,
		})
	}
	return items, nil
}
