package monitor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/models"
	"pingwatch/internal/ping"
)

// DefaultCapacity is the number of targets that can be monitored at once.
const DefaultCapacity = 4

// Handle identifies a registered monitor.
type Handle struct {
	ID           string
	RegisteredAt time.Time

	loop     *Loop
	registry *Registry
	stopOnce sync.Once
}

// stop waits for the loop to exit. Concurrent callers all wait.
func (h *Handle) stop() { h.stopOnce.Do(h.loop.Stop) }

// Target returns the monitored target.
func (h *Handle) Target() string { return h.loop.Target() }

// State returns the loop state.
func (h *Handle) State() models.State { return h.loop.State() }

// Pause pauses probing.
func (h *Handle) Pause() { h.loop.Pause() }

// Resume resumes probing.
func (h *Handle) Resume() { h.loop.Resume() }

// Toggle flips pause and reports whether the monitor is now paused.
func (h *Handle) Toggle() bool { return h.loop.Toggle() }

// Interval returns the probe interval.
func (h *Handle) Interval() time.Duration { return h.loop.Interval() }

// Snapshot is a point-in-time view of a registered monitor.
type Snapshot struct {
	ID           string        `json:"id"`
	Target       string        `json:"target"`
	State        models.State  `json:"state"`
	Interval     time.Duration `json:"interval_ns"`
	RegisteredAt time.Time     `json:"registered_at"`
}

// Registry bounds the number of concurrently active monitors.
type Registry struct {
	prober   models.Prober
	opts     LoopOptions
	capacity int
	log      *slog.Logger

	mu      sync.Mutex
	handles []*Handle
}

// NewRegistry creates a registry whose loops share prober and opts.
func NewRegistry(prober models.Prober, capacity int, opts LoopOptions) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		prober:   prober,
		opts:     opts,
		capacity: capacity,
		log:      opts.Logger,
	}
}

// Register starts monitoring target and delivers its results to obs. It
// fails with an ErrCapacity error when every slot is taken.
func (r *Registry) Register(target string, obs models.Observer) (*Handle, error) {
	if err := ping.ValidateTarget(target); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.handles) >= r.capacity {
		return nil, pwerrors.New(pwerrors.ErrCapacity,
			fmt.Sprintf("maximum of %d monitors reached", r.capacity),
			"stop a monitor before starting another")
	}

	loop := NewLoop(target, r.prober, obs, r.opts)
	if err := loop.Start(); err != nil {
		return nil, err
	}

	h := &Handle{
		ID:           uuid.NewString(),
		RegisteredAt: time.Now(),
		loop:         loop,
		registry:     r,
	}
	r.handles = append(r.handles, h)
	return h, nil
}

// Unregister stops the monitor and releases its slot once the loop has
// exited. Unregistering a handle twice, or one from another registry, is a
// no-op.
func (r *Registry) Unregister(h *Handle) {
	if h == nil || h.registry != r {
		return
	}

	r.mu.Lock()
	registered := r.indexOf(h) >= 0
	r.mu.Unlock()
	if !registered {
		return
	}

	h.stop()
	r.remove(h)
}

func (r *Registry) remove(handles ...*Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range handles {
		if idx := r.indexOf(h); idx >= 0 {
			r.handles = append(r.handles[:idx], r.handles[idx+1:]...)
		}
	}
}

func (r *Registry) indexOf(h *Handle) int {
	for i, existing := range r.handles {
		if existing == h {
			return i
		}
	}
	return -1
}

// Active returns the number of registered monitors.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Capacity returns the maximum number of monitors.
func (r *Registry) Capacity() int { return r.capacity }

// Handles returns the registered monitors in registration order.
func (r *Registry) Handles() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Handle(nil), r.handles...)
}

// Lookup finds a registered monitor by ID.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.handles {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// Snapshots describes every registered monitor.
func (r *Registry) Snapshots() []Snapshot {
	handles := r.Handles()
	out := make([]Snapshot, 0, len(handles))
	for _, h := range handles {
		out = append(out, Snapshot{
			ID:           h.ID,
			Target:       h.Target(),
			State:        h.State(),
			Interval:     h.Interval(),
			RegisteredAt: h.RegisteredAt,
		})
	}
	return out
}

// StopAll unregisters every monitor, stopping them concurrently.
func (r *Registry) StopAll() {
	handles := r.Handles()

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			h.stop()
		}(h)
	}
	wg.Wait()
	r.remove(handles...)

	if len(handles) > 0 {
		r.log.Info("stopped all monitors", "count", len(handles))
	}
}
