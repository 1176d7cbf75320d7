package logger

import (
	"bytes"
	"sync"
)

// Ring is an io.Writer that keeps the last few log lines in memory, so a
// full-screen UI can show them instead of letting them scribble over the
// terminal.
type Ring struct {
	mu       sync.Mutex
	keep     int
	messages []string
	notify   func()
}

// NewRing creates a ring that keeps at most keep lines.
func NewRing(keep int) *Ring {
	if keep <= 0 {
		keep = 100
	}
	return &Ring{keep: keep}
}

// OnWrite registers fn to be called after every write.
func (r *Ring) OnWrite(fn func()) {
	r.mu.Lock()
	r.notify = fn
	r.mu.Unlock()
}

func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte{'\n'}) {
		if len(line) > 0 {
			r.messages = append(r.messages, string(line))
		}
	}
	if delta := len(r.messages) - r.keep; delta > 0 {
		r.messages = r.messages[delta:]
	}
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify()
	}
	return len(p), nil
}

// Lines returns a copy of the retained lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
