// Package game implements the snake simulation as pure state transitions
// (Start, Restart, Route, Tick) plus a Controller that owns the state and
// applies commands and ticks from a single goroutine.
package game

import "github.com/ayusman/snakegesture/internal/input"

// Board defaults.
const (
	DefaultWidth    = 30
	DefaultHeight   = 30
	DefaultCellSize = 20
	// PointsPerFood is added to the score each time the snake eats.
	PointsPerFood = 10
)

// Point is a grid cell.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a unit step on the grid. The zero value means "not moving yet".
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// The four movement directions. Y grows downward.
var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// IsZero reports whether d is the initial, motionless direction.
func (d Direction) IsZero() bool {
	return d.X == 0 && d.Y == 0
}

// Reverses reports whether d is the exact negation of o on both axes.
func (d Direction) Reverses(o Direction) bool {
	return d.X == -o.X && d.Y == -o.Y
}

// DirectionOf returns the direction a turn command steers toward.
func DirectionOf(c input.Command) (Direction, bool) {
	switch c {
	case input.TurnUp:
		return Up, true
	case input.TurnDown:
		return Down, true
	case input.TurnLeft:
		return Left, true
	case input.TurnRight:
		return Right, true
	}
	return Direction{}, false
}

// Phase is the externally visible game state.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhasePaused     Phase = "paused"
	PhaseGameOver   Phase = "game_over"
)

// State is a complete game state. Transitions never modify the receiver's
// snake slice in place, so a State can be kept as a snapshot.
type State struct {
	Width  int
	Height int
	Round  string

	Snake   []Point // head first
	Dir     Direction
	Food    Point
	HasFood bool
	Score   int

	Started bool
	Paused  bool
	Over    bool
	// Won is set when the snake filled the board and no food could be placed.
	Won bool
}

// Phase derives the state machine position from the flags.
func (s State) Phase() Phase {
	switch {
	case s.Over:
		return PhaseGameOver
	case !s.Started:
		return PhaseNotStarted
	case s.Paused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Head returns the first snake cell.
func (s State) Head() Point {
	return s.Snake[0]
}

// Occupies reports whether p is a snake cell.
func (s State) Occupies(p Point) bool {
	for _, c := range s.Snake {
		if c == p {
			return true
		}
	}
	return false
}

// Cells returns the board size in cells.
func (s State) Cells() int {
	return s.Width * s.Height
}
