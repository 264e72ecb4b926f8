package game

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/snakegesture/internal/input"
)

// DefaultTickInterval is the time between two simulation steps.
const DefaultTickInterval = 100 * time.Millisecond

// Config holds the board and timing settings of a Controller.
type Config struct {
	Width        int
	Height       int
	CellSize     int
	TickInterval time.Duration
	// Seed feeds the food placement RNG. Zero picks a time-based seed.
	Seed uint64
}

// DefaultConfig returns the board used by the browser version of the game.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		CellSize:     DefaultCellSize,
		TickInterval: DefaultTickInterval,
	}
}

type opKind int

const (
	opStart opKind = iota
	opRestart
)

type op struct {
	kind  opKind
	reply chan Snapshot
}

// Controller owns the game state. Only the goroutine running Run mutates it;
// every other goroutine talks to it through the input queue or the lifecycle
// methods.
type Controller struct {
	config Config
	queue  *input.Queue
	rng    *rand.Rand
	ops    chan op

	// owned by Run
	state State
	ticks uint64

	latest atomic.Pointer[Snapshot]

	mu        sync.RWMutex
	observers map[int]func(Snapshot)
	nextID    int
}

// NewController creates a controller reading commands from queue.
func NewController(config Config, queue *input.Queue) *Controller {
	def := DefaultConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.CellSize <= 0 {
		config.CellSize = def.CellSize
	}
	if config.TickInterval <= 0 {
		config.TickInterval = def.TickInterval
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := &Controller{
		config:    config,
		queue:     queue,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		ops:       make(chan op),
		observers: make(map[int]func(Snapshot)),
	}
	c.state = NewState(config.Width, config.Height, c.rng)
	c.store()
	return c
}

// Queue returns the queue the controller consumes.
func (c *Controller) Queue() *input.Queue {
	return c.queue
}

// Config returns the controller's effective configuration.
func (c *Controller) Config() Config {
	return c.config
}

// Snapshot returns the most recently published view of the game.
func (c *Controller) Snapshot() Snapshot {
	return *c.latest.Load()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the controller goroutine and must not block. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Start begins a NotStarted game. It blocks until Run has applied it.
func (c *Controller) Start(ctx context.Context) (Snapshot, error) {
	return c.do(ctx, opStart)
}

// Restart resets the game to NotStarted. It blocks until Run has applied it.
func (c *Controller) Restart(ctx context.Context) (Snapshot, error) {
	return c.do(ctx, opRestart)
}

// TogglePause queues a pause toggle from a UI control. It returns false if the
// queue was full.
func (c *Controller) TogglePause() bool {
	return c.queue.Push(input.Event{Source: input.SourceUI, Command: input.TogglePause, At: time.Now()})
}

func (c *Controller) do(ctx context.Context, kind opKind) (Snapshot, error) {
	o := op{kind: kind, reply: make(chan Snapshot, 1)}
	select {
	case c.ops <- o:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-o.reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run is the game loop. It applies queued commands in arrival order, handles
// lifecycle requests and advances the simulation every TickInterval, until
// ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	c.publish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-c.queue.C():
			c.apply(ev, ticker)

		case o := <-c.ops:
			switch o.kind {
			case opStart:
				c.start(ticker)
			case opRestart:
				c.restart()
			}
			o.reply <- c.publish()

		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Controller) start(ticker *time.Ticker) {
	if c.state.Phase() != PhaseNotStarted {
		return
	}
	c.state = Start(c.state)
	// First step lands one full interval after start.
	ticker.Reset(c.config.TickInterval)
	log.Printf("Round %s started", c.state.Round)
}

func (c *Controller) restart() {
	c.state = Restart(c.state, c.rng)
	c.ticks = 0
	log.Printf("Round %s ready", c.state.Round)
}

// apply routes one queued command. StartGame and EndGame are the queued
// forms of the lifecycle requests; StartGame also replaces a finished game.
func (c *Controller) apply(ev input.Event, ticker *time.Ticker) {
	switch ev.Command {
	case input.StartGame:
		switch c.state.Phase() {
		case PhaseGameOver:
			c.restart()
			c.start(ticker)
		case PhaseNotStarted:
			c.start(ticker)
		default:
			return
		}
		c.publish()
		return
	case input.EndGame:
		if c.state.Phase() != PhaseRunning && c.state.Phase() != PhasePaused {
			return
		}
		c.state = End(c.state)
		log.Printf("Round %s ended by %s: score %d", c.state.Round, ev.Source, c.state.Score)
		c.publish()
		return
	}

	prev := c.state
	c.state = Route(c.state, ev)
	if c.state.Dir != prev.Dir || c.state.Paused != prev.Paused {
		c.publish()
	}
}

func (c *Controller) tick() {
	next, event := Tick(c.state, c.rng)
	if event == TickIdle {
		return
	}
	c.state = next
	c.ticks++

	switch event {
	case TickCollided:
		log.Printf("Round %s over: score %d", c.state.Round, c.state.Score)
	case TickFilled:
		log.Printf("Round %s won: board filled with score %d", c.state.Round, c.state.Score)
	}
	c.publish()
}

func (c *Controller) store() Snapshot {
	snap := NewSnapshot(c.state, c.config.CellSize)
	snap.Tick = c.ticks
	c.latest.Store(&snap)
	return snap
}

func (c *Controller) publish() Snapshot {
	snap := c.store()

	c.mu.RLock()
	observers := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(snap)
	}
	return snap
}
