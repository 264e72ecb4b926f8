// Package gesture turns the stream of recognized gesture labels into game
// commands, suppressing repeats and enforcing a minimum interval between
// accepted commands.
package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/snakegesture/internal/input"
)

// DefaultCooldown is the minimum interval between two accepted commands.
const DefaultCooldown = 100 * time.Millisecond

// Debouncer decides which recognized labels become commands.
//
// A label is accepted only if the cooldown since the last accepted label has
// elapsed and it differs from the last accepted label. Holding the same
// gesture therefore fires once, no matter how long it is held.
type Debouncer struct {
	cooldown time.Duration

	mu          sync.Mutex
	lastGesture string
	lastAccept  time.Time
}

// NewDebouncer creates a Debouncer. A non-positive cooldown uses DefaultCooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Debouncer{cooldown: cooldown}
}

// Cooldown returns the configured minimum interval.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// Accept offers a recognized label observed at now. It returns the command to
// emit, or false if the label is suppressed. Suppressed labels never change
// the debouncer's state.
func (d *Debouncer) Accept(label string, now time.Time) (input.Command, bool) {
	if label == "" {
		return 0, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lastAccept.IsZero() && now.Sub(d.lastAccept) < d.cooldown {
		return 0, false
	}
	if label == d.lastGesture {
		return 0, false
	}

	cmd, ok := input.FromLabel(label)
	if !ok {
		return 0, false
	}

	d.lastGesture = label
	d.lastAccept = now
	return cmd, true
}

// LastGesture returns the most recently accepted label, or "" if none.
func (d *Debouncer) LastGesture() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastGesture
}

// Reset forgets the last accepted label so the same gesture can fire again
// immediately.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastGesture = ""
	d.lastAccept = time.Time{}
}
