package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// NewState returns a fresh, not yet started game on a width×height board.
func NewState(width, height int, rng *rand.Rand) State {
	return Restart(State{Width: width, Height: height}, rng)
}

// Start moves a fresh game into Running. A game with no direction yet starts
// moving right; a direction chosen before start is kept. Starting a game that
// is already started or over is a no-op.
func Start(s State) State {
	if s.Started || s.Over {
		return s
	}
	s.Started = true
	if s.Dir.IsZero() {
		s.Dir = Right
	}
	return s
}

// End finishes a started game. The snake stops and only Restart leaves the
// resulting GameOver. Ending a game that is not started or already over is a
// no-op.
func End(s State) State {
	if !s.Started || s.Over {
		return s
	}
	s.Over = true
	return s
}

// Restart discards the current game and returns a new NotStarted one with a
// single-cell snake in the middle of the board, zero direction and score, and
// freshly placed food.
func Restart(s State, rng *rand.Rand) State {
	next := State{
		Width:  s.Width,
		Height: s.Height,
		Round:  uuid.NewString(),
		Snake:  []Point{{X: s.Width / 2, Y: s.Height / 2}},
	}

	food, err := PlaceFood(next.Snake, next.Width, next.Height, rng)
	if err == nil {
		next.Food = food
		next.HasFood = true
	}
	return next
}
