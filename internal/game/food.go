package game

import (
	"errors"
	"math/rand/v2"
)

// maxFoodAttempts bounds rejection sampling before falling back to a scan of
// the free cells.
const maxFoodAttempts = 64

// ErrBoardFull is returned when every cell is occupied by the snake.
var ErrBoardFull = errors.New("board is full: no free cell for food")

// PlaceFood picks a uniformly random cell of a width×height board that is not
// covered by snake. It always terminates.
func PlaceFood(snake []Point, width, height int, rng *rand.Rand) (Point, error) {
	occupied := make(map[Point]struct{}, len(snake))
	for _, p := range snake {
		occupied[p] = struct{}{}
	}

	total := width * height
	if len(occupied) >= total {
		return Point{}, ErrBoardFull
	}

	// Cheap path while the board is mostly empty.
	for i := 0; i < maxFoodAttempts; i++ {
		p := Point{X: rng.IntN(width), Y: rng.IntN(height)}
		if _, taken := occupied[p]; !taken {
			return p, nil
		}
	}

	free := make([]Point, 0, total-len(occupied))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := Point{X: x, Y: y}
			if _, taken := occupied[p]; !taken {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return Point{}, ErrBoardFull
	}
	return free[rng.IntN(len(free))], nil
}
