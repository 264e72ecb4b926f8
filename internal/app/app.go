// Package app wires the camera, the recognition service and the gesture
// debouncer to the game controller.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/snakegesture/internal/capture"
	"github.com/ayusman/snakegesture/internal/config"
	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/gesture"
	"github.com/ayusman/snakegesture/internal/input"
	"github.com/ayusman/snakegesture/internal/recognizer"
)

// Config holds the dependencies of an App. Nil Camera and Recognizer are
// built from Settings.
type Config struct {
	Settings   config.Config
	Camera     capture.Camera
	Recognizer recognizer.Recognizer
	// Seed is passed to the game controller. Zero picks a time-based seed.
	Seed uint64
}

// GestureStatus describes the gesture control state.
type GestureStatus struct {
	Enabled     bool   `json:"enabled"`
	SessionID   string `json:"session_id,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	LastGesture string `json:"last_gesture,omitempty"`
}

// App is the main application. It owns the game controller and, while
// gesture control is enabled, one capture session feeding it.
type App struct {
	settings   config.Config
	queue      *input.Queue
	controller *game.Controller
	camera     capture.Camera
	recognizer recognizer.Recognizer
	preview    *Preview

	// toggle serializes StartGesture and StopGesture. It may be held across
	// slow camera calls and is never taken by the game loop or the pipeline.
	toggle sync.Mutex

	mu      sync.Mutex
	session *gesture.Session
	cancel  context.CancelFunc

	// active mirrors session for lock-free readers.
	active atomic.Pointer[gesture.Session]

	watchMu   sync.Mutex
	watchers  map[int]func(GestureStatus)
	nextWatch int
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	def := config.Default()
	if cfg.Settings.MinCycle <= 0 {
		cfg.Settings.MinCycle = def.MinCycle
	}
	if cfg.Settings.RecognizeTimeout <= 0 {
		cfg.Settings.RecognizeTimeout = def.RecognizeTimeout
	}
	if cfg.Settings.Cooldown <= 0 {
		cfg.Settings.Cooldown = def.Cooldown
	}

	queue := input.NewQueue(cfg.Settings.QueueSize)
	gameCfg := cfg.Settings.GameConfig()
	gameCfg.Seed = cfg.Seed

	a := &App{
		settings:   cfg.Settings,
		queue:      queue,
		controller: game.NewController(gameCfg, queue),
		camera:     cfg.Camera,
		recognizer: cfg.Recognizer,
		preview:    NewPreview(),
		watchers:   make(map[int]func(GestureStatus)),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.Settings.CameraID)
	}
	if a.recognizer == nil {
		a.recognizer = NewRecognizer(cfg.Settings)
	}

	return a
}

// NewRecognizer builds the recognition client described by settings: a
// subprocess when a command is configured, HTTP otherwise.
func NewRecognizer(settings config.Config) recognizer.Recognizer {
	if argv := settings.RecognizerArgv(); len(argv) > 0 {
		log.Printf("Using recognition service command: %s", settings.RecognizerCommand)
		return recognizer.NewProcessRecognizer(argv[0], argv[1:]...)
	}
	log.Printf("Using recognition service at %s", settings.RecognizerURL)
	return recognizer.NewHTTPRecognizer(settings.RecognizerURL, settings.RecognizeTimeout)
}

// Run runs the game loop until ctx is cancelled, then stops gesture control.
func (a *App) Run(ctx context.Context) error {
	defer a.StopGesture()
	return a.controller.Run(ctx)
}

// StartGesture opens the camera and starts a capture session. It is a no-op
// if a session is already running. Camera failures wrap
// capture.ErrDeviceUnavailable and leave the game untouched.
func (a *App) StartGesture() error {
	a.toggle.Lock()
	defer a.toggle.Unlock()

	if a.active.Load() != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		log.Printf("Camera unavailable: %v", err)
		return fmt.Errorf("start gesture control: %w", err)
	}

	session := gesture.NewSession(a.settings.Cooldown)
	ctx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.session = session
	a.cancel = cancel
	a.active.Store(session)
	a.mu.Unlock()

	go a.runPipeline(ctx, session)

	log.Printf("Gesture control enabled (session %s)", session.ID)
	a.notifyGesture()
	return nil
}

// StopGesture ends the capture session. It does not wait for a recognition
// call in flight; its result is discarded. Calling it when disabled is a no-op.
func (a *App) StopGesture() {
	a.toggle.Lock()
	defer a.toggle.Unlock()

	a.mu.Lock()
	session, cancel := a.session, a.cancel
	a.session = nil
	a.cancel = nil
	a.active.Store(nil)
	a.mu.Unlock()

	if session == nil {
		return
	}

	cancel()
	session.End()

	// Close may wait for a frame read in progress.
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.preview.Clear()

	log.Printf("Gesture control disabled (session %s)", session.ID)
	a.notifyGesture()
}

// ToggleGesture flips gesture control and reports whether it is now enabled.
func (a *App) ToggleGesture() (bool, error) {
	if a.GestureEnabled() {
		a.StopGesture()
		return false, nil
	}
	if err := a.StartGesture(); err != nil {
		return false, err
	}
	return true, nil
}

// GestureEnabled reports whether a capture session is running. It never
// blocks, so snapshot observers on the game loop may call it.
func (a *App) GestureEnabled() bool {
	return a.active.Load() != nil
}

// GestureStatus returns the current gesture control state.
func (a *App) GestureStatus() GestureStatus {
	session := a.active.Load()
	if session == nil {
		return GestureStatus{}
	}
	return GestureStatus{
		Enabled:     true,
		SessionID:   session.ID,
		StartedAt:   session.StartedAt.Format(time.RFC3339),
		LastGesture: session.Debouncer.LastGesture(),
	}
}

// SubscribeGesture registers fn to receive the gesture status after gesture
// control is enabled or disabled. The returned function removes it.
func (a *App) SubscribeGesture(fn func(GestureStatus)) func() {
	a.watchMu.Lock()
	id := a.nextWatch
	a.nextWatch++
	a.watchers[id] = fn
	a.watchMu.Unlock()

	return func() {
		a.watchMu.Lock()
		delete(a.watchers, id)
		a.watchMu.Unlock()
	}
}

func (a *App) notifyGesture() {
	status := a.GestureStatus()

	a.watchMu.Lock()
	watchers := make([]func(GestureStatus), 0, len(a.watchers))
	for _, fn := range a.watchers {
		watchers = append(watchers, fn)
	}
	a.watchMu.Unlock()

	for _, fn := range watchers {
		fn(status)
	}
}

// Close stops gesture control and releases the recognition client.
func (a *App) Close() error {
	a.StopGesture()
	return a.recognizer.Close()
}

// Controller returns the game controller.
func (a *App) Controller() *game.Controller {
	return a.controller
}

// Queue returns the shared input queue.
func (a *App) Queue() *input.Queue {
	return a.queue
}

// Preview returns the holder of the latest annotated frame.
func (a *App) Preview() *Preview {
	return a.preview
}

// Settings returns the configuration the App was built with.
func (a *App) Settings() config.Config {
	return a.settings
}

// Push normalizes raw keyboard, touch or voice input and queues the resulting
// command. It returns false if the input maps to no command or the queue is full.
func (a *App) Push(raw input.RawInput) bool {
	cmd, ok := input.Normalize(raw)
	if !ok {
		return false
	}
	ev := input.Event{Source: raw.Source(), Command: cmd, At: time.Now()}
	if !a.queue.Push(ev) {
		log.Printf("Input queue full, dropped %s from %s", cmd, ev.Source)
		return false
	}
	return true
}
