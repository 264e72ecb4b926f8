package gesture

import (
	"time"

	"github.com/google/uuid"
)

// Session is one period of gesture control, from enabling the camera to
// disabling it.
type Session struct {
	ID        string
	StartedAt time.Time
	Debouncer *Debouncer
}

// NewSession starts a session with a fresh debouncer.
func NewSession(cooldown time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Debouncer: NewDebouncer(cooldown),
	}
}

// End resets the session's debouncer state.
func (s *Session) End() {
	s.Debouncer.Reset()
}
