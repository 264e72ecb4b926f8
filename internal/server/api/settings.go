package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/snakegesture/internal/config"
)

// SettingsHandler reads and updates persisted settings. Changes take
// effect the next time the binary starts.
type SettingsHandler struct {
	store config.SettingsStore
	base  config.Config
}

// NewSettingsHandler creates a handler over s. Stored values are overlaid
// on base.
func NewSettingsHandler(s config.SettingsStore, base config.Config) *SettingsHandler {
	return &SettingsHandler{store: s, base: base}
}

type settingsResponse struct {
	Settings        map[string]string `json:"settings"`
	RestartRequired bool              `json:"restart_required,omitempty"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) current() (config.Config, error) {
	cfg := h.base
	if err := config.Load(h.store, &cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Values()})
}

// update handles PUT /api/settings with a partial map of settings.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cfg, err := h.current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	if err := cfg.Apply(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := config.Save(h.store, cfg); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Values(), RestartRequired: true})
}
