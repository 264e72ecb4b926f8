// Package config holds the runtime settings of the game and the gesture
// pipeline. Values come from Default, then the settings store, then flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/gesture"
	"github.com/ayusman/snakegesture/internal/input"
	"github.com/ayusman/snakegesture/internal/recognizer"
)

// ErrInvalid is returned for settings that fail validation or parsing.
var ErrInvalid = errors.New("invalid config")

// Default pipeline settings.
const (
	DefaultMinCycle      = 16 * time.Millisecond
	DefaultRecognizerURL = "http://127.0.0.1:5000/detect_gesture"
	DefaultAddr          = ":8080"
)

// Setting keys as stored in the settings table and exchanged over the API.
const (
	KeyWidth             = "width"
	KeyHeight            = "height"
	KeyCellSize          = "cell_size"
	KeyTickInterval      = "tick_interval"
	KeyCooldown          = "cooldown"
	KeyMinCycle          = "min_cycle"
	KeyRecognizeTimeout  = "recognize_timeout"
	KeyRecognizerURL     = "recognizer_url"
	KeyRecognizerCommand = "recognizer_command"
	KeyCameraID          = "camera_id"
	KeyQueueSize         = "queue_size"
)

// Config holds configuration options for the application.
type Config struct {
	Width        int
	Height       int
	CellSize     int
	TickInterval time.Duration

	// Cooldown is the minimum gap between accepted gestures. It is
	// independent of TickInterval.
	Cooldown         time.Duration
	MinCycle         time.Duration
	RecognizeTimeout time.Duration

	// RecognizerURL is used unless RecognizerCommand is set.
	RecognizerURL     string
	RecognizerCommand string
	CameraID          int
	QueueSize         int

	// Addr is the HTTP listen address. It is not persisted.
	Addr string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:            game.DefaultWidth,
		Height:           game.DefaultHeight,
		CellSize:         game.DefaultCellSize,
		TickInterval:     game.DefaultTickInterval,
		Cooldown:         gesture.DefaultCooldown,
		MinCycle:         DefaultMinCycle,
		RecognizeTimeout: recognizer.DefaultTimeout,
		RecognizerURL:    DefaultRecognizerURL,
		CameraID:         0,
		QueueSize:        input.DefaultQueueSize,
		Addr:             DefaultAddr,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.Width < 2 || c.Height < 2:
		return fmt.Errorf("%w: grid must be at least 2x2, got %dx%d", ErrInvalid, c.Width, c.Height)
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell size must be positive", ErrInvalid)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalid)
	case c.Cooldown <= 0:
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalid)
	case c.MinCycle <= 0:
		return fmt.Errorf("%w: min cycle must be positive", ErrInvalid)
	case c.RecognizeTimeout <= 0:
		return fmt.Errorf("%w: recognize timeout must be positive", ErrInvalid)
	case c.RecognizerURL == "" && c.RecognizerCommand == "":
		return fmt.Errorf("%w: a recognizer URL or command is required", ErrInvalid)
	case c.CameraID < 0:
		return fmt.Errorf("%w: camera id must not be negative", ErrInvalid)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive", ErrInvalid)
	}
	return nil
}

// GameConfig returns the controller settings.
func (c Config) GameConfig() game.Config {
	return game.Config{
		Width:        c.Width,
		Height:       c.Height,
		CellSize:     c.CellSize,
		TickInterval: c.TickInterval,
	}
}

// RecognizerArgv splits RecognizerCommand into a program and its arguments.
func (c Config) RecognizerArgv() []string {
	return strings.Fields(c.RecognizerCommand)
}

// Values returns the persisted settings as strings.
func (c Config) Values() map[string]string {
	return map[string]string{
		KeyWidth:             strconv.Itoa(c.Width),
		KeyHeight:            strconv.Itoa(c.Height),
		KeyCellSize:          strconv.Itoa(c.CellSize),
		KeyTickInterval:      c.TickInterval.String(),
		KeyCooldown:          c.Cooldown.String(),
		KeyMinCycle:          c.MinCycle.String(),
		KeyRecognizeTimeout:  c.RecognizeTimeout.String(),
		KeyRecognizerURL:     c.RecognizerURL,
		KeyRecognizerCommand: c.RecognizerCommand,
		KeyCameraID:          strconv.Itoa(c.CameraID),
		KeyQueueSize:         strconv.Itoa(c.QueueSize),
	}
}

// Apply overlays string settings onto c. Unknown keys are rejected and c is
// left unchanged on error.
func (c *Config) Apply(values map[string]string) error {
	next := *c
	for k, v := range values {
		var err error
		switch k {
		case KeyWidth:
			next.Width, err = strconv.Atoi(v)
		case KeyHeight:
			next.Height, err = strconv.Atoi(v)
		case KeyCellSize:
			next.CellSize, err = strconv.Atoi(v)
		case KeyTickInterval:
			next.TickInterval, err = time.ParseDuration(v)
		case KeyCooldown:
			next.Cooldown, err = time.ParseDuration(v)
		case KeyMinCycle:
			next.MinCycle, err = time.ParseDuration(v)
		case KeyRecognizeTimeout:
			next.RecognizeTimeout, err = time.ParseDuration(v)
		case KeyRecognizerURL:
			next.RecognizerURL = v
		case KeyRecognizerCommand:
			next.RecognizerCommand = v
		case KeyCameraID:
			next.CameraID, err = strconv.Atoi(v)
		case KeyQueueSize:
			next.QueueSize, err = strconv.Atoi(v)
		default:
			return fmt.Errorf("%w: unknown setting %q", ErrInvalid, k)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, k, err)
		}
	}
	*c = next
	return nil
}

// RegisterFlags binds command-line flags to the fields of c, using the
// current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, KeyWidth, c.Width, "grid width in cells")
	fs.IntVar(&c.Height, KeyHeight, c.Height, "grid height in cells")
	fs.IntVar(&c.CellSize, KeyCellSize, c.CellSize, "cell size in pixels")
	fs.DurationVar(&c.TickInterval, KeyTickInterval, c.TickInterval, "game tick interval")
	fs.DurationVar(&c.Cooldown, KeyCooldown, c.Cooldown, "minimum gap between accepted gestures")
	fs.DurationVar(&c.MinCycle, KeyMinCycle, c.MinCycle, "minimum capture cycle")
	fs.DurationVar(&c.RecognizeTimeout, KeyRecognizeTimeout, c.RecognizeTimeout, "recognition call timeout")
	fs.StringVar(&c.RecognizerURL, KeyRecognizerURL, c.RecognizerURL, "recognition service endpoint")
	fs.StringVar(&c.RecognizerCommand, KeyRecognizerCommand, c.RecognizerCommand, "recognition service command (overrides the URL)")
	fs.IntVar(&c.CameraID, KeyCameraID, c.CameraID, "camera device id")
	fs.IntVar(&c.QueueSize, KeyQueueSize, c.QueueSize, "input queue capacity")
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
}
