package input

// DefaultQueueSize is the capacity used when NewQueue is given a non-positive size.
const DefaultQueueSize = 64

// CommandSource is anything the game controller can pull events from.
type CommandSource interface {
	// Poll returns the next pending event without blocking.
	Poll() (Event, bool)
}

// Queue is a bounded FIFO shared by all producers. Events are delivered in
// the order they were pushed, regardless of source.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue holding at most size pending events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push enqueues an event without blocking. It returns false if the queue is full
// and the event was dropped.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Poll implements CommandSource.
func (q *Queue) Poll() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// C exposes the receive side for select loops.
func (q *Queue) C() <-chan Event {
	return q.ch
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}
