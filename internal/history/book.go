package history

import (
	"sort"
	"sync"

	"pingwatch/internal/models"
)

// Book holds one Buffer per target. It is an Observer, so it can sit
// behind a monitor queue as the display layer's store.
type Book struct {
	size    int
	mu      sync.RWMutex
	buffers map[string]*Buffer
}

// NewBook creates a Book whose buffers hold size results each.
func NewBook(size int) *Book {
	if size <= 0 {
		size = DefaultSize
	}
	return &Book{
		size:    size,
		buffers: make(map[string]*Buffer),
	}
}

// OnResult records result in its target's buffer.
func (b *Book) OnResult(result models.ProbeResult) {
	b.Buffer(result.Target).Add(result)
}

// Buffer returns the buffer for target, creating it if needed.
func (b *Book) Buffer(target string) *Buffer {
	b.mu.RLock()
	buf, ok := b.buffers[target]
	b.mu.RUnlock()
	if ok {
		return buf
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok = b.buffers[target]; !ok {
		buf = NewBuffer(b.size)
		b.buffers[target] = buf
	}
	return buf
}

// Lookup returns the buffer for target without creating one.
func (b *Book) Lookup(target string) (*Buffer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.buffers[target]
	return buf, ok
}

// Forget drops the history of target.
func (b *Book) Forget(target string) {
	b.mu.Lock()
	delete(b.buffers, target)
	b.mu.Unlock()
}

// Targets lists the targets with history, sorted.
func (b *Book) Targets() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	targets := make([]string, 0, len(b.buffers))
	for t := range b.buffers {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
