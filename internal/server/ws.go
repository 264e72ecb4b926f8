package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/snakegesture/internal/app"
	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/input"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	controlWait    = 2 * time.Second
	sendBufferSize = 16
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientMessage is sent by browsers: key presses, swipes, transcribed speech
// and button clicks.
type clientMessage struct {
	Type string  `json:"type"`
	Key  string  `json:"key,omitempty"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
	Text string  `json:"text,omitempty"`
}

// stateMessage carries a snapshot plus the gesture control state.
type stateMessage struct {
	Type string `json:"type"`
	game.Snapshot
	GestureEnabled bool `json:"gesture_enabled"`
	Preview        bool `json:"preview"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes every game snapshot, gesture control change and preview
// appearance to connected WebSocket clients, and turns their messages into
// game input.
type Hub struct {
	app         *app.App
	unsubscribe []func()
	stopWatch   context.CancelFunc

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a Hub subscribed to the app's game controller, gesture
// control and preview.
func NewHub(a *app.App) *Hub {
	h := &Hub{
		app:     a,
		clients: make(map[*client]bool),
	}
	h.unsubscribe = []func(){
		a.Controller().Subscribe(h.broadcast),
		a.SubscribeGesture(func(app.GestureStatus) {
			h.broadcast(a.Controller().Snapshot())
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.stopWatch = cancel
	go h.watchPreview(ctx)
	return h
}

// watchPreview broadcasts the state whenever a preview appears or is
// cleared, so clients learn about it even while the game is idle.
func (h *Hub) watchPreview(ctx context.Context) {
	p := h.app.Preview()
	_, version, _ := p.Latest()
	available := p.Available()

	for {
		jpeg, v, err := p.Wait(ctx, version)
		if err != nil {
			return
		}
		version = v
		if now := jpeg != nil; now != available {
			available = now
			h.broadcast(h.app.Controller().Snapshot())
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	c.send <- h.encodeState(h.app.Controller().Snapshot())

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)

	h.remove(c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops the subscriptions and disconnects every client.
func (h *Hub) Close() {
	for _, fn := range h.unsubscribe {
		fn()
	}
	h.stopWatch()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast runs on the controller goroutine among others, so it never
// blocks: a client whose buffer is full misses the update.
func (h *Hub) broadcast(snap game.Snapshot) {
	msg := h.encodeState(snap)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *Hub) encodeState(snap game.Snapshot) []byte {
	msg, _ := json.Marshal(stateMessage{
		Type:           "state",
		Snapshot:       snap,
		GestureEnabled: h.app.GestureEnabled(),
		Preview:        h.app.Preview().Available(),
	})
	return msg
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(c, "Invalid message")
			continue
		}
		h.handle(ctx, c, msg)
	}
}

func (h *Hub) handle(ctx context.Context, c *client, msg clientMessage) {
	ctrl := h.app.Controller()
	ctx, cancel := context.WithTimeout(ctx, controlWait)
	defer cancel()

	switch msg.Type {
	case "key":
		h.app.Push(input.RawInput{Kind: input.KindKey, Key: msg.Key})
	case "swipe":
		h.app.Push(input.RawInput{Kind: input.KindSwipe, DX: msg.DX, DY: msg.DY})
	case "start":
		if _, err := ctrl.Start(ctx); err != nil {
			h.reply(c, "Game loop not running")
		}
	case "pause":
		if !ctrl.TogglePause() {
			h.reply(c, "Input queue full")
		}
	case "restart":
		if _, err := ctrl.Restart(ctx); err != nil {
			h.reply(c, "Game loop not running")
		}
	case "voice":
		if _, ok := input.FromPhrase(msg.Text); !ok {
			h.reply(c, "Unrecognized voice command: "+msg.Text)
			return
		}
		if !h.app.Push(input.RawInput{Kind: input.KindVoice, Text: msg.Text}) {
			h.reply(c, "Input queue full")
		}
	case "gesture":
		// A change reaches every client through SubscribeGesture.
		if _, err := h.app.ToggleGesture(); err != nil {
			h.reply(c, err.Error())
		}
	default:
		h.reply(c, "Unknown message type: "+msg.Type)
	}
}

func (h *Hub) reply(c *client, text string) {
	msg, _ := json.Marshal(errorMessage{Type: "error", Error: text})
	h.sendTo(c, msg)
}

func (h *Hub) sendTo(c *client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
