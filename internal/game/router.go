package game

import "github.com/ayusman/snakegesture/internal/input"

// Route applies one command to the state and returns the result.
//
// A finished game ignores everything. Keyboard and touch input only count
// while the game is running. TogglePause flips the paused flag; Pause and
// Resume set it. Lifecycle commands are left to the Controller. A turn is
// accepted unless it exactly reverses the current direction; the first turn
// from the zero direction is always accepted.
func Route(s State, ev input.Event) State {
	if s.Over {
		return s
	}

	switch ev.Source {
	case input.SourceKeyboard, input.SourceTouch:
		if !s.Started || s.Paused {
			return s
		}
	}

	switch ev.Command {
	case input.TogglePause:
		s.Paused = !s.Paused
		return s
	case input.Pause:
		s.Paused = true
		return s
	case input.Resume:
		s.Paused = false
		return s
	}

	d, ok := DirectionOf(ev.Command)
	if !ok {
		return s
	}
	if !s.Dir.IsZero() && d.Reverses(s.Dir) {
		return s
	}
	s.Dir = d
	return s
}
