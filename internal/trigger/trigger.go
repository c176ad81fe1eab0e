// Package trigger holds the edge-triggered export request flag.
package trigger

import "sync/atomic"

// Trigger is raised by a request source and consumed once by the exporter
type Trigger struct {
	raised atomic.Bool
}

// Raise marks an export as requested. Raising twice before a Consume
// still yields one export.
func (t *Trigger) Raise() {
	t.raised.Store(true)
}

// Consume clears the flag and reports whether it was set
func (t *Trigger) Consume() bool {
	return t.raised.CompareAndSwap(true, false)
}

// Pending reports whether a request is waiting
func (t *Trigger) Pending() bool {
	return t.raised.Load()
}
