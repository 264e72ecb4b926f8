package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/snakegesture/internal/app"
	"github.com/ayusman/snakegesture/internal/capture"
)

// GestureControl turns the camera pipeline on and off. *app.App satisfies it.
type GestureControl interface {
	StartGesture() error
	StopGesture()
	ToggleGesture() (bool, error)
	GestureStatus() app.GestureStatus
}

// GestureHandler handles requests under /api/gesture.
type GestureHandler struct {
	control GestureControl
}

// NewGestureHandler creates a new GestureHandler.
func NewGestureHandler(c GestureControl) *GestureHandler {
	return &GestureHandler{control: c}
}

type setGestureRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP routes /api/gesture and /api/gesture/toggle.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/gesture"), "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.control.GestureStatus())

	case path == "" && r.Method == http.MethodPost:
		var req setGestureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if *req.Enabled {
			if err := h.control.StartGesture(); err != nil {
				writeStartError(w, err)
				return
			}
		} else {
			h.control.StopGesture()
		}
		writeJSON(w, http.StatusOK, h.control.GestureStatus())

	case path == "toggle" && r.Method == http.MethodPost:
		if _, err := h.control.ToggleGesture(); err != nil {
			writeStartError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.control.GestureStatus())

	case path == "" || path == "toggle":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func writeStartError(w http.ResponseWriter, err error) {
	if errors.Is(err, capture.ErrDeviceUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Camera unavailable: "+err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to start gesture control")
}
