package game

import (
	"errors"
	"math/rand/v2"
)

// TickEvent describes what a tick did.
type TickEvent int

const (
	// TickIdle means the game was not running and nothing changed.
	TickIdle TickEvent = iota
	// TickMoved means the snake advanced one cell.
	TickMoved
	// TickAte means the snake advanced onto the food and grew.
	TickAte
	// TickCollided means the head hit the body and the game is over.
	TickCollided
	// TickFilled means the snake ate the last free cell and the game is over.
	TickFilled
)

// String returns a readable name for logging.
func (e TickEvent) String() string {
	switch e {
	case TickIdle:
		return "idle"
	case TickMoved:
		return "moved"
	case TickAte:
		return "ate"
	case TickCollided:
		return "collided"
	case TickFilled:
		return "filled"
	default:
		return "unknown"
	}
}

// wrap maps v onto [0, n).
func wrap(v, n int) int {
	return ((v % n) + n) % n
}

// Tick advances a running game by one step on the toroidal board.
func Tick(s State, rng *rand.Rand) (State, TickEvent) {
	if s.Phase() != PhaseRunning || len(s.Snake) == 0 {
		return s, TickIdle
	}

	head := s.Head()
	next := Point{
		X: wrap(head.X+s.Dir.X, s.Width),
		Y: wrap(head.Y+s.Dir.Y, s.Height),
	}

	if s.Occupies(next) {
		s.Over = true
		return s, TickCollided
	}

	snake := make([]Point, 0, len(s.Snake)+1)
	snake = append(snake, next)
	snake = append(snake, s.Snake...)

	if s.HasFood && next == s.Food {
		s.Snake = snake
		s.Score += PointsPerFood

		food, err := PlaceFood(snake, s.Width, s.Height, rng)
		if errors.Is(err, ErrBoardFull) {
			s.HasFood = false
			s.Over = true
			s.Won = true
			return s, TickFilled
		}
		s.Food = food
		return s, TickAte
	}

	s.Snake = snake[:len(snake)-1]
	return s, TickMoved
}
