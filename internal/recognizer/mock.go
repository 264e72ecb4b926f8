package recognizer

import (
	"context"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockRecognizer is a test implementation of the Recognizer interface.
// It replays a script of results, repeating the last entry once exhausted.
type MockRecognizer struct {
	mu      sync.Mutex
	script  []MockReply
	index   int
	delay   time.Duration
	calls   int
	started chan struct{}
	closed  bool
}

// MockReply is one scripted answer.
type MockReply struct {
	Result Result
	Err    error
}

// NewMockRecognizer creates a MockRecognizer that reports no gesture until scripted.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{started: make(chan struct{}, 64)}
}

// SetGestures scripts a sequence of labels.
func (m *MockRecognizer) SetGestures(labels ...string) {
	replies := make([]MockReply, len(labels))
	for i, l := range labels {
		replies[i] = MockReply{Result: Result{Gesture: l}}
	}
	m.SetScript(replies...)
}

// SetScript replaces the reply sequence and rewinds it.
func (m *MockRecognizer) SetScript(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = replies
	m.index = 0
}

// SetError makes every following call fail with err.
func (m *MockRecognizer) SetError(err error) {
	m.SetScript(MockReply{Err: err})
}

// SetDelay makes each call take at least d, simulating network latency.
func (m *MockRecognizer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many times Recognize was invoked.
func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Started receives a value each time a call begins.
func (m *MockRecognizer) Started() <-chan struct{} {
	return m.started
}

// Recognize returns the next scripted reply. The delay is not interrupted by
// ctx, like a request already on the wire.
func (m *MockRecognizer) Recognize(ctx context.Context, frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	m.calls++
	delay := m.delay
	var reply MockReply
	if len(m.script) > 0 {
		reply = m.script[m.index]
		if m.index < len(m.script)-1 {
			m.index++
		}
	}
	m.mu.Unlock()

	select {
	case m.started <- struct{}{}:
	default:
	}

	if delay > 0 {
		time.Sleep(delay)
	}
	return reply.Result, reply.Err
}

// Close marks the mock closed.
func (m *MockRecognizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockRecognizer) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
