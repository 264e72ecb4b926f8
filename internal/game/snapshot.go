package game

// Cell colors of the rendering surface.
const (
	ColorSnake = "#0f0"
	ColorFood  = "#f00"
)

// GameOverText is drawn over the board once the game has ended.
const GameOverText = "Game Over"

// Cell is one colored square to draw.
type Cell struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

// Controls mirrors which buttons are usable in the current phase.
type Controls struct {
	StartEnabled   bool   `json:"start_enabled"`
	PauseEnabled   bool   `json:"pause_enabled"`
	RestartEnabled bool   `json:"restart_enabled"`
	PauseLabel     string `json:"pause_label"`
}

// ControlsFor returns the button state for s.
func ControlsFor(s State) Controls {
	c := Controls{PauseLabel: "Pause"}
	if s.Paused {
		c.PauseLabel = "Resume"
	}

	switch s.Phase() {
	case PhaseNotStarted:
		c.StartEnabled = true
	case PhaseRunning, PhasePaused:
		c.PauseEnabled = true
		c.RestartEnabled = true
	case PhaseGameOver:
		c.RestartEnabled = true
	}
	return c
}

// Snapshot is the read-only view of a game handed to renderers and clients.
type Snapshot struct {
	Round     string    `json:"round"`
	Tick      uint64    `json:"tick"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CellSize  int       `json:"cell_size"`
	Snake     []Point   `json:"snake"`
	Food      *Point    `json:"food,omitempty"`
	Direction Direction `json:"direction"`
	Score     int       `json:"score"`
	Phase     Phase     `json:"phase"`
	Won       bool      `json:"won"`
	Overlay   string    `json:"overlay,omitempty"`
	Controls  Controls  `json:"controls"`
	Cells     []Cell    `json:"cells"`
}

// NewSnapshot builds the render contract for s.
func NewSnapshot(s State, cellSize int) Snapshot {
	snap := Snapshot{
		Round:     s.Round,
		Width:     s.Width,
		Height:    s.Height,
		CellSize:  cellSize,
		Snake:     append([]Point(nil), s.Snake...),
		Direction: s.Dir,
		Score:     s.Score,
		Phase:     s.Phase(),
		Won:       s.Won,
		Controls:  ControlsFor(s),
		Cells:     make([]Cell, 0, len(s.Snake)+1),
	}

	for _, p := range s.Snake {
		snap.Cells = append(snap.Cells, Cell{X: p.X, Y: p.Y, Kind: "snake", Color: ColorSnake})
	}
	if s.HasFood {
		food := s.Food
		snap.Food = &food
		snap.Cells = append(snap.Cells, Cell{X: food.X, Y: food.Y, Kind: "food", Color: ColorFood})
	}
	if s.Over {
		snap.Overlay = GameOverText
	}
	return snap
}
