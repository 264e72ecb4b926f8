package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayusman/snakegesture/internal/game"
)

// Game is the control surface of a running game. *game.Controller
// satisfies it.
type Game interface {
	Snapshot() game.Snapshot
	Start(ctx context.Context) (game.Snapshot, error)
	Restart(ctx context.Context) (game.Snapshot, error)
	TogglePause() bool
}

// GameHandler handles requests under /api/game.
type GameHandler struct {
	game Game
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(g Game) *GameHandler {
	return &GameHandler{game: g}
}

// ServeHTTP routes /api/game and /api/game/{start,pause,restart}.
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/game")
	action = strings.Trim(action, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.game.Snapshot())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "start":
		h.lifecycle(w, r, h.game.Start)
	case "restart":
		h.lifecycle(w, r, h.game.Restart)
	case "pause":
		if !h.game.TogglePause() {
			writeError(w, http.StatusServiceUnavailable, "Input queue full")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
	default:
		writeError(w, http.StatusNotFound, "Unknown game action")
	}
}

func (h *GameHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context) (game.Snapshot, error)) {
	snap, err := op(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Game loop not running")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
