package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/snakegesture/internal/app"
	"github.com/ayusman/snakegesture/internal/capture"
	"github.com/ayusman/snakegesture/internal/config"
	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/store"
)

type fakeGame struct {
	snap      game.Snapshot
	err       error
	queueFull bool
	toggles   int
}

func (g *fakeGame) Snapshot() game.Snapshot { return g.snap }

func (g *fakeGame) Start(ctx context.Context) (game.Snapshot, error) {
	if g.err != nil {
		return game.Snapshot{}, g.err
	}
	g.snap.Phase = game.PhaseRunning
	return g.snap, nil
}

func (g *fakeGame) Restart(ctx context.Context) (game.Snapshot, error) {
	if g.err != nil {
		return game.Snapshot{}, g.err
	}
	g.snap = game.Snapshot{Round: "next", Phase: game.PhaseNotStarted}
	return g.snap, nil
}

func (g *fakeGame) TogglePause() bool {
	g.toggles++
	return !g.queueFull
}

type fakeGestures struct {
	enabled  bool
	startErr error
}

func (f *fakeGestures) StartGesture() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.enabled = true
	return nil
}

func (f *fakeGestures) StopGesture() { f.enabled = false }

func (f *fakeGestures) ToggleGesture() (bool, error) {
	if f.enabled {
		f.StopGesture()
		return false, nil
	}
	if err := f.StartGesture(); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeGestures) GestureStatus() app.GestureStatus {
	if !f.enabled {
		return app.GestureStatus{}
	}
	return app.GestureStatus{Enabled: true, SessionID: "s1"}
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestGameHandler(t *testing.T) {
	g := &fakeGame{snap: game.Snapshot{Round: "r1", Phase: game.PhaseNotStarted}}
	h := NewGameHandler(g)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantPhase  game.Phase
	}{
		{"snapshot", http.MethodGet, "/api/game", http.StatusOK, game.PhaseNotStarted},
		{"start", http.MethodPost, "/api/game/start", http.StatusOK, game.PhaseRunning},
		{"restart", http.MethodPost, "/api/game/restart", http.StatusOK, game.PhaseNotStarted},
		{"pause is queued", http.MethodPost, "/api/game/pause", http.StatusAccepted, ""},
		{"unknown action", http.MethodPost, "/api/game/jump", http.StatusNotFound, ""},
		{"post snapshot", http.MethodPost, "/api/game", http.StatusMethodNotAllowed, ""},
		{"get start", http.MethodGet, "/api/game/start", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantPhase == "" {
				return
			}
			var snap game.Snapshot
			if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
				t.Fatalf("failed to decode snapshot: %v", err)
			}
			if snap.Phase != tt.wantPhase {
				t.Errorf("phase = %s, want %s", snap.Phase, tt.wantPhase)
			}
		})
	}

	if g.toggles != 1 {
		t.Errorf("TogglePause called %d times, want 1", g.toggles)
	}
}

func TestGameHandler_Unavailable(t *testing.T) {
	g := &fakeGame{err: context.DeadlineExceeded, queueFull: true}
	h := NewGameHandler(g)

	for _, path := range []string{"/api/game/start", "/api/game/restart", "/api/game/pause"} {
		rec := serve(h, http.MethodPost, path, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestGestureHandler(t *testing.T) {
	f := &fakeGestures{}
	h := NewGestureHandler(f)

	rec := serve(h, http.MethodPost, "/api/gesture", `{"enabled": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("enable status = %d, want 200", rec.Code)
	}
	var status app.GestureStatus
	json.NewDecoder(rec.Body).Decode(&status)
	if !status.Enabled || status.SessionID != "s1" {
		t.Errorf("status = %+v, want enabled", status)
	}

	rec = serve(h, http.MethodPost, "/api/gesture/toggle", "")
	if rec.Code != http.StatusOK || f.enabled {
		t.Errorf("toggle: status = %d, enabled = %v; want 200, false", rec.Code, f.enabled)
	}

	rec = serve(h, http.MethodGet, "/api/gesture", "")
	json.NewDecoder(rec.Body).Decode(&status)
	if rec.Code != http.StatusOK || status.Enabled {
		t.Errorf("get: status = %d, %+v", rec.Code, status)
	}

	serve(h, http.MethodPost, "/api/gesture", `{"enabled": true}`)
	rec = serve(h, http.MethodPost, "/api/gesture", `{"enabled": false}`)
	if rec.Code != http.StatusOK || f.enabled {
		t.Errorf("disable: status = %d, enabled = %v", rec.Code, f.enabled)
	}
}

func TestGestureHandler_BadRequests(t *testing.T) {
	h := NewGestureHandler(&fakeGestures{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"invalid json", http.MethodPost, "/api/gesture", "{", http.StatusBadRequest},
		{"missing enabled", http.MethodPost, "/api/gesture", `{}`, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/api/gesture", "", http.StatusMethodNotAllowed},
		{"get toggle", http.MethodGet, "/api/gesture/toggle", "", http.StatusMethodNotAllowed},
		{"unknown", http.MethodPost, "/api/gesture/calibrate", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGestureHandler_CameraUnavailable(t *testing.T) {
	f := &fakeGestures{startErr: fmt.Errorf("start gesture control: %w", capture.ErrDeviceUnavailable)}
	h := NewGestureHandler(f)

	for _, path := range []string{"/api/gesture/toggle", "/api/gesture"} {
		rec := serve(h, http.MethodPost, path, `{"enabled": true}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d, want 503", path, rec.Code)
		}
		if msg := decodeError(t, rec); msg == "" {
			t.Errorf("%s: expected an error message", path)
		}
	}

	f.startErr = errors.New("boom")
	rec := serve(h, http.MethodPost, "/api/gesture/toggle", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSettingsHandler(t *testing.T) {
	s := newTestStore(t)
	h := NewSettingsHandler(s.Settings(), config.Default())

	rec := serve(h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	var resp settingsResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Settings[config.KeyTickInterval] != "100ms" {
		t.Errorf("tick_interval = %q, want 100ms", resp.Settings[config.KeyTickInterval])
	}

	rec = serve(h, http.MethodPut, "/api/settings", `{"tick_interval": "80ms", "cooldown": "250ms"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	resp = settingsResponse{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.RestartRequired {
		t.Error("PUT response should flag restart_required")
	}

	stored, err := s.Settings().Get(config.KeyCooldown)
	if err != nil || stored != "250ms" {
		t.Errorf("stored cooldown = %q, %v; want 250ms", stored, err)
	}

	rec = serve(h, http.MethodGet, "/api/settings", "")
	resp = settingsResponse{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Settings[config.KeyTickInterval] != "80ms" {
		t.Errorf("tick_interval after PUT = %q, want 80ms", resp.Settings[config.KeyTickInterval])
	}
}

func TestSettingsHandler_Invalid(t *testing.T) {
	s := newTestStore(t)
	h := NewSettingsHandler(s.Settings(), config.Default())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "["},
		{"unknown key", `{"colour": "red"}`},
		{"bad duration", `{"cooldown": "fast"}`},
		{"grid too small", `{"width": "1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodPut, "/api/settings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if all, _ := s.Settings().All(); len(all) != 0 {
		t.Errorf("rejected updates were stored: %v", all)
	}

	rec := serve(h, http.MethodDelete, "/api/settings", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}
