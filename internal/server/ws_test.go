package server

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/snakegesture/internal/config"
	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/recognizer"
	"github.com/ayusman/snakegesture/testdata"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type           string         `json:"type"`
	Phase          game.Phase     `json:"phase"`
	Direction      game.Direction `json:"direction"`
	GestureEnabled bool           `json:"gesture_enabled"`
	Preview        bool           `json:"preview"`
	Error          string         `json:"error"`
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s error = %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write %s error = %v", msg, err)
	}
}

// readUntil reads messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, what string, match func(wsMessage) bool) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestHub_PlaysGame(t *testing.T) {
	ta := newTestApp(t)
	startApp(t, ta.App)

	srv := New(Config{App: ta.App})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	conn := dial(t, ts)

	first := readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })
	if first.Phase != game.PhaseNotStarted {
		t.Errorf("initial phase = %s, want not_started", first.Phase)
	}

	send(t, conn, `{"type": "start"}`)
	readUntil(t, conn, "running", func(m wsMessage) bool { return m.Phase == game.PhaseRunning })

	send(t, conn, `{"type": "key", "key": "ArrowDown"}`)
	readUntil(t, conn, "turn down", func(m wsMessage) bool { return m.Direction == game.Down })

	send(t, conn, `{"type": "swipe", "dx": -50, "dy": 10}`)
	readUntil(t, conn, "turn left", func(m wsMessage) bool { return m.Direction == game.Left })

	send(t, conn, `{"type": "pause"}`)
	readUntil(t, conn, "paused", func(m wsMessage) bool { return m.Phase == game.PhasePaused })

	// Keys are ignored while paused.
	send(t, conn, `{"type": "key", "key": "ArrowUp"}`)
	send(t, conn, `{"type": "restart"}`)
	msg := readUntil(t, conn, "restart", func(m wsMessage) bool { return m.Phase == game.PhaseNotStarted })
	if !msg.Direction.IsZero() {
		t.Errorf("direction after restart = %+v, want zero", msg.Direction)
	}

	if n := srv.hub.Clients(); n != 1 {
		t.Errorf("Clients() = %d, want 1", n)
	}
}

func TestHub_GestureToggle(t *testing.T) {
	ta := newTestApp(t)
	startApp(t, ta.App)

	ts := httptest.NewServer(New(Config{App: ta.App}))
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })

	ta.camera.FailOpen(errors.New("busy"))
	send(t, conn, `{"type": "gesture"}`)
	msg := readUntil(t, conn, "camera error", func(m wsMessage) bool { return m.Type == "error" })
	if !strings.Contains(msg.Error, "unavailable") {
		t.Errorf("error = %q, want camera unavailable", msg.Error)
	}

	ta.camera.FailOpen(nil)
	send(t, conn, `{"type": "gesture"}`)
	readUntil(t, conn, "gesture enabled", func(m wsMessage) bool { return m.Type == "state" && m.GestureEnabled })

	send(t, conn, `{"type": "gesture"}`)
	readUntil(t, conn, "gesture disabled", func(m wsMessage) bool { return m.Type == "state" && !m.GestureEnabled })
}

func TestHub_RejectsBadMessages(t *testing.T) {
	ta := newTestApp(t)

	ts := httptest.NewServer(New(Config{App: ta.App}))
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })

	send(t, conn, `not json`)
	readUntil(t, conn, "parse error", func(m wsMessage) bool { return m.Type == "error" })

	send(t, conn, `{"type": "teleport"}`)
	msg := readUntil(t, conn, "unknown type", func(m wsMessage) bool { return m.Type == "error" })
	if !strings.Contains(msg.Error, "teleport") {
		t.Errorf("error = %q", msg.Error)
	}
}

func TestHub_Voice(t *testing.T) {
	ta := newTestApp(t)
	startApp(t, ta.App)

	ts := httptest.NewServer(New(Config{App: ta.App}))
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })

	send(t, conn, `{"type": "voice", "text": "start"}`)
	readUntil(t, conn, "running", func(m wsMessage) bool { return m.Phase == game.PhaseRunning })

	send(t, conn, `{"type": "voice", "text": "向上"}`)
	readUntil(t, conn, "turn up", func(m wsMessage) bool { return m.Direction == game.Up })

	send(t, conn, `{"type": "voice", "text": "Pause"}`)
	readUntil(t, conn, "paused", func(m wsMessage) bool { return m.Phase == game.PhasePaused })

	// Voice is not gated by pause.
	send(t, conn, `{"type": "voice", "text": "left"}`)
	readUntil(t, conn, "turn left", func(m wsMessage) bool { return m.Direction == game.Left })

	send(t, conn, `{"type": "voice", "text": "resume"}`)
	readUntil(t, conn, "running again", func(m wsMessage) bool { return m.Phase == game.PhaseRunning })

	send(t, conn, `{"type": "voice", "text": "end"}`)
	readUntil(t, conn, "game over", func(m wsMessage) bool { return m.Phase == game.PhaseGameOver })

	send(t, conn, `{"type": "voice", "text": "hello there"}`)
	msg := readUntil(t, conn, "unrecognized", func(m wsMessage) bool { return m.Type == "error" })
	if !strings.Contains(msg.Error, "hello there") {
		t.Errorf("error = %q", msg.Error)
	}
}

func TestHub_PauseReportsFullQueue(t *testing.T) {
	// The game loop is not running, so nothing drains the queue.
	ta := newTestApp(t, func(c *config.Config) { c.QueueSize = 1 })

	ts := httptest.NewServer(New(Config{App: ta.App}))
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })

	send(t, conn, `{"type": "pause"}`)
	send(t, conn, `{"type": "pause"}`)
	msg := readUntil(t, conn, "queue full", func(m wsMessage) bool { return m.Type == "error" })
	if msg.Error != "Input queue full" {
		t.Errorf("error = %q, want Input queue full", msg.Error)
	}
	if n := ta.Queue().Len(); n != 1 {
		t.Errorf("queue length = %d, want 1", n)
	}
}

func TestHub_PreviewChangesReachIdleClients(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping JPEG encoding in short mode")
	}
	img, err := testdata.JPEG()
	if err != nil {
		t.Fatalf("JPEG() error = %v", err)
	}

	ta := newTestApp(t)
	startApp(t, ta.App)
	ta.rec.SetScript(recognizer.MockReply{Result: recognizer.Result{Annotated: img}})

	srv := New(Config{App: ta.App})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "initial state", func(m wsMessage) bool { return m.Type == "state" })

	// The game stays NotStarted, so no snapshot is published by the game loop.
	if err := ta.StartGesture(); err != nil {
		t.Fatalf("StartGesture() error = %v", err)
	}
	msg := readUntil(t, conn, "preview available", func(m wsMessage) bool { return m.Type == "state" && m.Preview })
	if msg.Phase != game.PhaseNotStarted || !msg.GestureEnabled {
		t.Errorf("state = %+v, want not_started with gesture enabled", msg)
	}

	ta.StopGesture()
	readUntil(t, conn, "preview cleared", func(m wsMessage) bool {
		return m.Type == "state" && !m.Preview && !m.GestureEnabled
	})
}
