// Package input turns keyboard keys, touch swipes, recognized gesture labels
// and spoken phrases into canonical game commands.
package input

import "time"

// Command is one of the canonical game commands.
type Command int

const (
	// TurnUp steers the snake toward row 0.
	TurnUp Command = iota + 1
	// TurnDown steers the snake toward the last row.
	TurnDown
	// TurnLeft steers the snake toward column 0.
	TurnLeft
	// TurnRight steers the snake toward the last column.
	TurnRight
	// TogglePause flips the paused flag.
	TogglePause
	// Pause and Resume set the paused flag explicitly.
	Pause
	Resume
	// StartGame begins a fresh game, replacing a finished one.
	StartGame
	// EndGame finishes the current game.
	EndGame
)

// String returns the wire name of the command.
func (c Command) String() string {
	switch c {
	case TurnUp:
		return "TURN_UP"
	case TurnDown:
		return "TURN_DOWN"
	case TurnLeft:
		return "TURN_LEFT"
	case TurnRight:
		return "TURN_RIGHT"
	case TogglePause:
		return "TOGGLE_PAUSE"
	case Pause:
		return "PAUSE"
	case Resume:
		return "RESUME"
	case StartGame:
		return "START"
	case EndGame:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// IsTurn reports whether the command is one of the four directional commands.
func (c Command) IsTurn() bool {
	return c >= TurnUp && c <= TurnRight
}

// IsLifecycle reports whether the command starts or ends a game rather than
// steering or pausing it.
func (c Command) IsLifecycle() bool {
	return c == StartGame || c == EndGame
}

// Source identifies the producer of an event.
type Source string

const (
	SourceKeyboard Source = "keyboard"
	SourceTouch    Source = "touch"
	SourceGesture  Source = "gesture"
	SourceVoice    Source = "voice"
	// SourceUI is used for on-screen and tray buttons.
	SourceUI Source = "ui"
)

// Event is a normalized command tagged with where it came from.
type Event struct {
	Source  Source
	Command Command
	At      time.Time
}
