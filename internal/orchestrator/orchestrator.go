package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sshpanes/sshpanes/internal/events"
	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/models"
	"github.com/sshpanes/sshpanes/internal/session"
	"github.com/sshpanes/sshpanes/internal/util/remotepath"
)

// Direction identifies which way a batch moves files.
type Direction string

const (
	// DirectionDownload copies remote items into the local pane.
	DirectionDownload Direction = "download"

	// DirectionUpload copies local items into the remote pane.
	DirectionUpload Direction = "upload"
)

// ErrTransferInProgress is returned when a batch is requested while one is
// already running. Batches are never queued; the caller retries later.
var ErrTransferInProgress = errors.New("a transfer batch is already running")

// ErrBatchDeclined is returned when the user declines the collision
// confirmation. No item has been executed.
var ErrBatchDeclined = errors.New("transfer batch declined")

// Copier is the slice of the session executor the orchestrator needs.
type Copier interface {
	Copy(ctx context.Context, target session.Target, req session.CopyRequest) (models.SessionResult, error)
}

// RemoteProber checks remote destination existence for pre-flight
// collision detection.
type RemoteProber interface {
	Exists(ctx context.Context, target session.Target, path string) (bool, error)
}

// Confirmer asks the user to approve overwriting colliding destinations.
// External collaborator: a dialog in the GUI, a terminal prompt in the CLI.
type Confirmer interface {
	ConfirmOverwrite(names []string) bool
}

// Refresher re-lists a pane after an item lands in it.
type Refresher interface {
	RefreshLocal()
	RefreshRemote()
}

// Request describes one transfer batch.
type Request struct {
	Direction Direction

	// Items are the named, typed entries to transfer. For uploads the name
	// is the local base name and the kind reflects the local stat.
	Items []models.RemoteEntry

	// RemoteDir is the current remote directory.
	RemoteDir string

	// LocalDir is the current local directory.
	LocalDir string
}

// Orchestrator runs transfer batches. One batch at a time; items within a
// batch run strictly sequentially so a slow link is shared fairly.
type Orchestrator struct {
	copier    Copier
	prober    RemoteProber
	confirmer Confirmer
	refresher Refresher
	eventBus  *events.EventBus
	logger    *logging.Logger

	busy atomic.Bool
}

// New creates an Orchestrator. refresher and eventBus may be nil.
func New(copier Copier, prober RemoteProber, confirmer Confirmer, refresher Refresher, eventBus *events.EventBus, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		copier:    copier,
		prober:    prober,
		confirmer: confirmer,
		refresher: refresher,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Busy reports whether a batch is currently running.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Run executes a batch and returns the final per-item statuses. One item's
// failure never aborts its siblings. A declined collision confirmation
// aborts the whole batch before any subprocess is launched, returning
// ErrBatchDeclined and no statuses.
func (o *Orchestrator) Run(ctx context.Context, target session.Target, req Request) ([]Snapshot, error) {
	if len(req.Items) == 0 {
		return nil, nil
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrTransferInProgress
	}
	defer o.busy.Store(false)

	if err := o.preflight(ctx, target, req); err != nil {
		return nil, err
	}

	batchID := fmt.Sprintf("batch-%d", time.Now().UnixNano())
	statuses := make([]*ItemStatus, len(req.Items))
	for i, item := range req.Items {
		statuses[i] = newItemStatus(fmt.Sprintf("%s/%d", batchID, i+1), item)
	}

	start := time.Now()
	o.publish(&events.BatchStartedEvent{
		BaseEvent: events.Base(events.EventBatchStarted),
		BatchID:   batchID,
		Direction: string(req.Direction),
		Total:     len(req.Items),
	})

	var succeeded, failed int
	for _, status := range statuses {
		if err := o.runItem(ctx, target, req, batchID, status); err != nil {
			failed++
		} else {
			succeeded++
		}
	}

	o.publish(&events.BatchFinishedEvent{
		BaseEvent: events.Base(events.EventBatchFinished),
		BatchID:   batchID,
		Succeeded: succeeded,
		Failed:    failed,
		Duration:  time.Since(start),
	})

	result := make([]Snapshot, len(statuses))
	for i, s := range statuses {
		result[i] = s.snapshot()
	}
	return result, nil
}

// preflight probes every destination name for existence and requires
// confirmation when any collide. Declining is terminal for the batch.
func (o *Orchestrator) preflight(ctx context.Context, target session.Target, req Request) error {
	var collisions []string
	for _, item := range req.Items {
		exists, err := o.destinationExists(ctx, target, req, item)
		if err != nil {
			return fmt.Errorf("pre-flight check failed for %s: %w", item.Name, err)
		}
		if exists {
			collisions = append(collisions, item.Name)
		}
	}

	if len(collisions) == 0 {
		return nil
	}
	if o.confirmer != nil && o.confirmer.ConfirmOverwrite(collisions) {
		return nil
	}
	o.logger.Info().Strs("names", collisions).Msg("Batch declined at collision prompt")
	return ErrBatchDeclined
}

func (o *Orchestrator) destinationExists(ctx context.Context, target session.Target, req Request, item models.RemoteEntry) (bool, error) {
	switch req.Direction {
	case DirectionDownload:
		_, err := os.Stat(filepath.Join(req.LocalDir, item.Name))
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	case DirectionUpload:
		return o.prober.Exists(ctx, target, remotepath.Join(req.RemoteDir, item.Name))
	default:
		return false, fmt.Errorf("unknown direction %q", req.Direction)
	}
}

// runItem moves one item through running to a terminal state and triggers
// the direction-appropriate pane refresh on success.
func (o *Orchestrator) runItem(ctx context.Context, target session.Target, req Request, batchID string, status *ItemStatus) error {
	o.setState(batchID, status, StateRunning, "")

	copyReq := o.copyRequest(req, status.Item)

	// Forward the subprocess diagnostic stream as progress events while the
	// copy runs. The executor closes the channel when the stream ends.
	diag := make(chan string, 16)
	copyReq.Diagnostics = diag
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for chunk := range diag {
			o.publish(&events.ItemDiagnosticEvent{
				BaseEvent: events.Base(events.EventItemDiagnostic),
				BatchID:   batchID,
				ItemID:    status.ID,
				Chunk:     chunk,
			})
		}
	}()

	_, err := o.copier.Copy(ctx, target, copyReq)
	<-forwarded

	if err != nil {
		message := err.Error()
		var cmdErr *session.CommandError
		if errors.As(err, &cmdErr) {
			message = cmdErr.Stderr
		}
		o.setState(batchID, status, StateFailed, message)
		o.logger.Error().Err(err).Str("item", status.Item.Name).Msg("Transfer failed")
		return err
	}

	o.setState(batchID, status, StateSucceeded, "")
	o.logger.Info().Str("item", status.Item.Name).Str("direction", string(req.Direction)).Msg("Transfer complete")

	if o.refresher != nil {
		switch req.Direction {
		case DirectionDownload:
			o.refresher.RefreshLocal()
		case DirectionUpload:
			o.refresher.RefreshRemote()
		}
	}
	return nil
}

// copyRequest builds the scp request for one item. Remote paths always get
// exactly one separator between directory and name.
func (o *Orchestrator) copyRequest(req Request, item models.RemoteEntry) session.CopyRequest {
	remote := remotepath.Join(req.RemoteDir, item.Name)
	local := filepath.Join(req.LocalDir, item.Name)

	if req.Direction == DirectionDownload {
		// scp writes into the containing directory; the remote side names
		// the file.
		local = req.LocalDir
	}
	return session.CopyRequest{
		RemotePath:  remote,
		LocalPath:   local,
		FromRemote:  req.Direction == DirectionDownload,
		IsDirectory: item.IsDirectory(),
	}
}

func (o *Orchestrator) setState(batchID string, status *ItemStatus, to ItemState, message string) {
	if err := status.transition(to, message); err != nil {
		// Should be unreachable; the coordinator is the only mutator.
		o.logger.Error().Err(err).Msg("Status transition rejected")
		return
	}
	o.publish(&events.ItemStateChangedEvent{
		BaseEvent: events.Base(events.EventItemStateChanged),
		BatchID:   batchID,
		ItemID:    status.ID,
		Name:      status.Item.Name,
		State:     string(to),
		Message:   message,
	})
}

func (o *Orchestrator) publish(ev events.Event) {
	if o.eventBus != nil {
		o.eventBus.Publish(ev)
	}
}
