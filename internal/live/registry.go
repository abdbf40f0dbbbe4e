package live

import (
	"sync"
	"time"
)

// ConnectionSession binds one live connection to the interview session it is
// driving: the question currently awaiting an answer, its ordinal, and the
// in-progress audio capture. It exists only for the lifetime of the
// connection and is never persisted. The choreographer is its sole owner;
// the mutex covers the capture buffer and pending timers, which scheduled
// emissions touch from timer goroutines.
type ConnectionSession struct {
	SessionID string
	UserID    string

	QuestionID     string
	QuestionText   string
	QuestionNumber int
	MaxQuestions   int

	mu       sync.Mutex
	capture  []byte
	timers   []*time.Timer
	released bool
}

func (c *ConnectionSession) AppendAudio(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.capture = append(c.capture, chunk...)
}

// TakeCapture returns the accumulated audio and resets the buffer.
func (c *ConnectionSession) TakeCapture() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.capture
	c.capture = nil
	return out
}

// BindQuestion points the connection at the next unanswered question.
func (c *ConnectionSession) BindQuestion(id, text string, number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuestionID = id
	c.QuestionText = text
	c.QuestionNumber = number
}

func (c *ConnectionSession) CurrentQuestion() (id, text string, number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.QuestionID, c.QuestionText, c.QuestionNumber
}

// schedule runs fn after d unless the session is released first. A timer
// that fires after release is a no-op, never an error.
func (c *ConnectionSession) schedule(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		c.mu.Lock()
		dead := c.released
		c.mu.Unlock()
		if dead {
			return
		}
		fn()
	})
	c.timers = append(c.timers, t)
}

// release cancels pending timers and drops the capture buffer.
func (c *ConnectionSession) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.capture = nil
}

// Registry maps live connection ids to their ConnectionSession. It is the
// only structure here touched by multiple connections; each entry is still
// mutated only through its own connection's choreography.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*ConnectionSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*ConnectionSession)}
}

func (r *Registry) Bind(connID string, cs *ConnectionSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = cs
}

func (r *Registry) Get(connID string) (*ConnectionSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.sessions[connID]
	return cs, ok
}

// Remove unbinds and releases the entry, returning it if present.
func (r *Registry) Remove(connID string) (*ConnectionSession, bool) {
	r.mu.Lock()
	cs, ok := r.sessions[connID]
	delete(r.sessions, connID)
	r.mu.Unlock()

	if ok {
		cs.release()
	}
	return cs, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
