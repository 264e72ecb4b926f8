package gesture

import (
	"testing"
	"time"

	"github.com/ayusman/snakegesture/internal/input"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewDebouncer_DefaultCooldown(t *testing.T) {
	if got := NewDebouncer(0).Cooldown(); got != DefaultCooldown {
		t.Errorf("Cooldown() = %v, want %v", got, DefaultCooldown)
	}
	if got := NewDebouncer(250 * time.Millisecond).Cooldown(); got != 250*time.Millisecond {
		t.Errorf("Cooldown() = %v, want 250ms", got)
	}
}

func TestDebouncer_MapsLabels(t *testing.T) {
	tests := []struct {
		label string
		want  input.Command
	}{
		{label: "UP", want: input.TurnUp},
		{label: "DOWN", want: input.TurnDown},
		{label: "LEFT", want: input.TurnLeft},
		{label: "RIGHT", want: input.TurnRight},
		{label: "TOGGLE_PAUSE", want: input.TogglePause},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			d := NewDebouncer(100 * time.Millisecond)
			got, ok := d.Accept(tt.label, t0)
			if !ok || got != tt.want {
				t.Errorf("Accept(%q) = %v, %v; want %v, true", tt.label, got, ok, tt.want)
			}
		})
	}
}

func TestDebouncer_NoGesture(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	if _, ok := d.Accept("", t0); ok {
		t.Error("empty label should not produce a command")
	}
	if d.LastGesture() != "" {
		t.Error("empty label should not change state")
	}

	// An absent gesture does not consume the cooldown either.
	if _, ok := d.Accept("UP", t0.Add(time.Millisecond)); !ok {
		t.Error("first real label should be accepted")
	}
}

func TestDebouncer_IdenticalLabelsWithinCooldown(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	now := t0
	accepted := 0
	for _, gap := range []time.Duration{0, 90, 60, 30, 10, 1} {
		now = now.Add(gap * time.Millisecond)
		if _, ok := d.Accept("LEFT", now); ok {
			accepted++
		}
	}

	if accepted != 1 {
		t.Errorf("accepted %d identical labels, want only the first", accepted)
	}
}

func TestDebouncer_ChangeThenCooldown(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	if _, ok := d.Accept("UP", t0); !ok {
		t.Fatal("first UP should be accepted")
	}

	// Same label long after the cooldown is still rejected.
	if _, ok := d.Accept("UP", t0.Add(5*time.Second)); ok {
		t.Error("repeated UP after cooldown should be rejected")
	}

	// A different label inside the cooldown is rejected without changing state.
	if _, ok := d.Accept("LEFT", t0.Add(50*time.Millisecond)); ok {
		t.Error("LEFT inside cooldown should be rejected")
	}
	if got := d.LastGesture(); got != "UP" {
		t.Errorf("LastGesture() = %q, want UP after a suppressed label", got)
	}

	// The change counts once the cooldown has elapsed.
	cmd, ok := d.Accept("LEFT", t0.Add(6*time.Second))
	if !ok || cmd != input.TurnLeft {
		t.Fatalf("LEFT after cooldown = %v, %v; want TurnLeft, true", cmd, ok)
	}

	// And UP may fire again now that the label changed.
	if _, ok := d.Accept("UP", t0.Add(7*time.Second)); !ok {
		t.Error("UP after a change should be accepted")
	}
}

func TestDebouncer_CooldownBoundary(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	d.Accept("UP", t0)

	if _, ok := d.Accept("DOWN", t0.Add(99*time.Millisecond)); ok {
		t.Error("99ms < cooldown should be suppressed")
	}
	if _, ok := d.Accept("DOWN", t0.Add(100*time.Millisecond)); !ok {
		t.Error("exactly the cooldown should be accepted")
	}
}

func TestDebouncer_UnknownLabel(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	d.Accept("UP", t0)

	if _, ok := d.Accept("WAVE", t0.Add(time.Second)); ok {
		t.Error("unknown label should not produce a command")
	}
	if got := d.LastGesture(); got != "UP" {
		t.Errorf("LastGesture() = %q, want UP", got)
	}
	if _, ok := d.Accept("DOWN", t0.Add(time.Second)); !ok {
		t.Error("unknown label must not start a cooldown")
	}
}

func TestDebouncer_Reset(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	d.Accept("RIGHT", t0)

	d.Reset()

	if d.LastGesture() != "" {
		t.Errorf("LastGesture() = %q after Reset, want empty", d.LastGesture())
	}
	if _, ok := d.Accept("RIGHT", t0.Add(time.Millisecond)); !ok {
		t.Error("same gesture should re-trigger immediately after Reset")
	}
}

func TestSession(t *testing.T) {
	a := NewSession(0)
	b := NewSession(0)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("session ids %q and %q should be unique and non-empty", a.ID, b.ID)
	}
	if a.Debouncer.Cooldown() != DefaultCooldown {
		t.Errorf("cooldown = %v, want default", a.Debouncer.Cooldown())
	}

	a.Debouncer.Accept("UP", t0)
	a.End()
	if a.Debouncer.LastGesture() != "" {
		t.Error("End() should clear the last gesture")
	}
}
