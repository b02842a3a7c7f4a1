package state

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sshpanes/sshpanes/internal/browser"
	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/models"
	"github.com/sshpanes/sshpanes/internal/session"
)

// RemoteLister is the slice of the listing service the controller needs.
type RemoteLister interface {
	List(ctx context.Context, target session.Target, path string) ([]models.RemoteEntry, error)
}

// Controller owns both panes and serializes their refreshes. A refresh
// requested while one is already in flight for the same pane is dropped,
// not queued.
type Controller struct {
	Remote *RemotePane
	Local  *LocalPane

	lister RemoteLister
	target session.Target
	logger *logging.Logger

	remoteBusy atomic.Bool
	localBusy  atomic.Bool
}

// RefreshTimeout bounds how long a dropped-refresh guard can be held by a
// wedged listing before the context gives up.
const RefreshTimeout = 60 * time.Second

// NewController creates a controller over the given panes.
func NewController(remote *RemotePane, local *LocalPane, lister RemoteLister, target session.Target, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{
		Remote: remote,
		Local:  local,
		lister: lister,
		target: target,
		logger: logger,
	}
}

// RefreshRemote re-lists the current remote directory. Returns false when
// the request was dropped because a listing is already in flight.
func (c *Controller) RefreshRemote(ctx context.Context) bool {
	if !c.remoteBusy.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("Remote refresh dropped, listing already in flight")
		return false
	}
	defer c.remoteBusy.Store(false)

	ctx, cancel := context.WithTimeout(ctx, RefreshTimeout)
	defer cancel()

	c.Remote.SetLoading(true)
	entries, err := c.lister.List(ctx, c.target, c.Remote.Path())
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.Remote.Path()).Msg("Remote listing failed")
		c.Remote.SetError(err)
		return true
	}
	c.Remote.SetEntries(entries)
	return true
}

// RefreshLocal re-scans the current local directory. Returns false when the
// request was dropped.
func (c *Controller) RefreshLocal(ctx context.Context) bool {
	if !c.localBusy.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("Local refresh dropped, scan already in flight")
		return false
	}
	defer c.localBusy.Store(false)

	entries, err := browser.Scan(c.Local.Path())
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.Local.Path()).Msg("Local scan failed")
		c.Local.SetError(err)
		return true
	}
	c.Local.SetEntries(entries)
	return true
}

// RefreshAdapter exposes the controller as the orchestrator's Refresher:
// post-transfer refreshes run against a background context so they outlive
// the batch's own cancellation scope.
type RefreshAdapter struct {
	Controller *Controller
}

// RefreshLocal implements orchestrator.Refresher.
func (a RefreshAdapter) RefreshLocal() {
	a.Controller.RefreshLocal(context.Background())
}

// RefreshRemote implements orchestrator.Refresher.
func (a RefreshAdapter) RefreshRemote() {
	a.Controller.RefreshRemote(context.Background())
}
