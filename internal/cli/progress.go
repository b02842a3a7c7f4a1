package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/sshpanes/sshpanes/internal/events"
	"github.com/sshpanes/sshpanes/internal/orchestrator"
)

// progressReporter consumes transfer events from the bus and renders one
// indeterminate bar per running item, fed by the subprocess diagnostic
// stream. It is the explicit progress task the core streams into; nothing
// here runs on a UI thread.
type progressReporter struct {
	events <-chan events.Event
	done   chan struct{}

	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
	tty  bool
}

// newProgressReporter subscribes to the bus and starts consuming.
func newProgressReporter(bus *events.EventBus) *progressReporter {
	r := &progressReporter{
		events: bus.SubscribeAll(),
		done:   make(chan struct{}),
		bars:   make(map[string]*progressbar.ProgressBar),
		tty:    term.IsTerminal(int(os.Stderr.Fd())),
	}
	go r.run()
	return r
}

func (r *progressReporter) run() {
	defer close(r.done)
	for ev := range r.events {
		switch e := ev.(type) {
		case *events.ItemStateChangedEvent:
			r.onState(e)
		case *events.ItemDiagnosticEvent:
			r.onDiagnostic(e)
		case *events.BatchFinishedEvent:
			return
		}
	}
}

func (r *progressReporter) onState(e *events.ItemStateChangedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch orchestrator.ItemState(e.State) {
	case orchestrator.StateRunning:
		if !r.tty {
			fmt.Fprintf(os.Stderr, "transferring %s...\n", e.Name)
			return
		}
		r.bars[e.ItemID] = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(e.Name),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	case orchestrator.StateSucceeded, orchestrator.StateFailed:
		if bar, ok := r.bars[e.ItemID]; ok {
			_ = bar.Finish()
			delete(r.bars, e.ItemID)
		}
	}
}

func (r *progressReporter) onDiagnostic(e *events.ItemDiagnosticEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bar, ok := r.bars[e.ItemID]; ok {
		// Diagnostic volume stands in for byte progress; scp reports real
		// percentages on a pty only, which BatchMode never allocates.
		_ = bar.Add(len(e.Chunk))
	}
}

// wait blocks until the reporter has drained its batch.
func (r *progressReporter) wait() {
	<-r.done
}

// printSummary renders the final per-item statuses.
func printSummary(statuses []orchestrator.Snapshot) {
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed)

	for _, s := range statuses {
		switch s.State {
		case orchestrator.StateSucceeded:
			okColor.Printf("  ok      %s\n", s.Item.Name)
		case orchestrator.StateFailed:
			failColor.Printf("  failed  %s: %s\n", s.Item.Name, firstLine(s.Message))
		default:
			fmt.Printf("  %-7s %s\n", s.State, s.Item.Name)
		}
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
