// Package dashboard is a minimal stand-in for the original program's
// ncurses terminal UI (no terminal UI is being built here). It keeps
// the same three-method contract — Log, SetStep, Run — so the
// simulation loop drives it exactly the way the original drives its
// curses UI, just rendered through structured logging instead of a
// curses window.
package dashboard

import (
	"sync"
	"sync/atomic"

	"github.com/obelisklab/obelisksim/internal/logging"
)

// Dashboard is the simulation's observer-facing collaborator: the
// simulation runs on its own goroutine and calls SetStep/Log as it
// progresses, while Run blocks the calling goroutine (ordinarily
// main) until Stop is called.
type Dashboard struct {
	currentStep int64 // atomic

	mu   sync.Mutex
	done chan struct{}
}

// New returns a Dashboard ready to Run.
func New() *Dashboard {
	return &Dashboard{done: make(chan struct{})}
}

// SetStep records the simulation's current virtual-clock position.
func (d *Dashboard) SetStep(step int64) {
	atomic.StoreInt64(&d.currentStep, step)
}

// Log emits a log line tagged with the step it was produced at.
func (d *Dashboard) Log(msg string) {
	logging.Entry().WithField("step", atomic.LoadInt64(&d.currentStep)).Info(msg)
}

// Run blocks until Stop is called.
func (d *Dashboard) Run() {
	<-d.done
}

// Stop releases a blocked Run.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.done:
	default:
		close(d.done)
	}
}
