// Package tray provides a system tray menu mirroring the game's controls.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/snakegesture/internal/game"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onStart   func()
	onPause   func()
	onRestart func()
	onGesture func()
	onOpen    func()
	onQuit    func()
	mu        sync.RWMutex
	state     menuState

	// Menu items stored for later updates
	menuStart   *systray.MenuItem
	menuPause   *systray.MenuItem
	menuRestart *systray.MenuItem
	menuGesture *systray.MenuItem
	menuScore   *systray.MenuItem
}

// menuState is what the menu shows for one snapshot.
type menuState struct {
	startEnabled   bool
	pauseEnabled   bool
	restartEnabled bool
	pauseTitle     string
	gestureTitle   string
	scoreTitle     string
}

func stateFor(snap game.Snapshot, gestureEnabled bool) menuState {
	m := menuState{
		startEnabled:   snap.Controls.StartEnabled,
		pauseEnabled:   snap.Controls.PauseEnabled,
		restartEnabled: snap.Controls.RestartEnabled,
		pauseTitle:     snap.Controls.PauseLabel,
		gestureTitle:   "○ Gesture Control",
		scoreTitle:     fmt.Sprintf("Score: %d", snap.Score),
	}
	if m.pauseTitle == "" {
		m.pauseTitle = "Pause"
	}
	if gestureEnabled {
		m.gestureTitle = "● Gesture Control"
	}
	switch {
	case snap.Won:
		m.scoreTitle += " (board filled)"
	case snap.Phase == game.PhaseGameOver:
		m.scoreTitle += " (game over)"
	}
	return m
}

// New creates a new Tray showing a game that has not started.
func New() *Tray {
	return &Tray{
		state: stateFor(game.Snapshot{Controls: game.Controls{StartEnabled: true}}, false),
	}
}

// OnStart sets the callback for the Start item.
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnPause sets the callback for the Pause/Resume item.
func (t *Tray) OnPause(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnRestart sets the callback for the Restart item.
func (t *Tray) OnRestart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRestart = fn
}

// OnGesture sets the callback for the gesture control toggle.
func (t *Tray) OnGesture(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGesture = fn
}

// OnOpen sets the callback for the Open in Browser item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops Run from another goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Snake")
	systray.SetTooltip("Gesture Snake")

	t.mu.Lock()
	t.menuStart = systray.AddMenuItem("Start", "Start the game")
	t.menuPause = systray.AddMenuItem("Pause", "Pause or resume the game")
	t.menuRestart = systray.AddMenuItem("Restart", "Start a new round")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem("○ Gesture Control", "Toggle camera gesture control")
	t.menuScore = systray.AddMenuItem("Score: 0", "Current score")
	t.menuScore.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the game board")
	menuQuit := systray.AddMenuItem("Quit", "Quit Snake")
	t.apply()
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuStart.ClickedCh:
				t.call(func() func() { return t.onStart })
			case <-t.menuPause.ClickedCh:
				t.call(func() func() { return t.onPause })
			case <-t.menuRestart.ClickedCh:
				t.call(func() func() { return t.onRestart })
			case <-t.menuGesture.ClickedCh:
				t.call(func() func() { return t.onGesture })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs the callback chosen by pick outside the lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// Update refreshes the menu from a game snapshot. It is safe to call
// before Run.
func (t *Tray) Update(snap game.Snapshot, gestureEnabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := stateFor(snap, gestureEnabled)
	if next == t.state {
		return
	}
	t.state = next
	t.apply()
}

// apply pushes t.state to the menu items. Callers hold mu.
func (t *Tray) apply() {
	if t.menuStart == nil {
		return
	}
	setEnabled(t.menuStart, t.state.startEnabled)
	setEnabled(t.menuPause, t.state.pauseEnabled)
	setEnabled(t.menuRestart, t.state.restartEnabled)
	t.menuPause.SetTitle(t.state.pauseTitle)
	t.menuGesture.SetTitle(t.state.gestureTitle)
	t.menuScore.SetTitle(t.state.scoreTitle)
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
