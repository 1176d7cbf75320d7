package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/models"
)

const (
	MinInterval        = time.Second
	DefaultStopTimeout = 2 * time.Second
)

// minInterval is lowered by tests.
var minInterval = MinInterval

// Loop probes a single target on a fixed cadence and hands every result to
// its observer, in the order the probes were issued.
//
// A Loop is single-use: once stopped it cannot be started again. Monitoring
// a different target means stopping this loop and creating a new one.
type Loop struct {
	target      string
	interval    time.Duration
	stopTimeout time.Duration
	prober      models.Prober
	observer    models.Observer
	log         *slog.Logger

	mu      sync.Mutex
	state   models.State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	// deliverMu serializes delivery with Stop; stopped is only read or
	// written while holding it.
	deliverMu sync.Mutex
	stopped   bool
}

// LoopOptions are the tunables of a Loop.
type LoopOptions struct {
	Interval    time.Duration // clamped to MinInterval
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// NewLoop creates a stopped loop for target.
func NewLoop(target string, prober models.Prober, observer models.Observer, opts LoopOptions) *Loop {
	if opts.Interval < minInterval {
		opts.Interval = minInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if observer == nil {
		observer = models.Observers(nil)
	}

	return &Loop{
		target:      target,
		interval:    opts.Interval,
		stopTimeout: opts.StopTimeout,
		prober:      prober,
		observer:    observer,
		log:         opts.Logger.With("target", target),
		state:       models.StateStopped,
		done:        make(chan struct{}),
	}
}

// Target returns the monitored target.
func (l *Loop) Target() string { return l.target }

// Interval returns the effective probe interval.
func (l *Loop) Interval() time.Duration { return l.interval }

// State returns the current lifecycle state.
func (l *Loop) State() models.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start launches the probe goroutine. Starting a running or paused loop is
// a no-op; starting a stopped loop is an error.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		if l.state == models.StateStopped {
			return pwerrors.New(pwerrors.ErrState, "monitor for "+l.target+" was stopped", "start a new monitor instead")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.started = true
	l.cancel = cancel
	l.state = models.StateRunning

	go l.run(ctx)

	l.log.Info("monitor started", "interval", l.interval)
	return nil
}

// Stop cancels the loop, killing an in-flight probe, and waits up to the
// stop timeout for the goroutine to exit. No result is delivered after Stop
// returns. Stop is idempotent and must not be called from the loop's own
// observer.
func (l *Loop) Stop() {
	l.mu.Lock()
	wasStarted := l.started
	alreadyStopped := wasStarted && l.state == models.StateStopped
	l.started = true
	l.state = models.StateStopped
	cancel := l.cancel
	l.mu.Unlock()

	if alreadyStopped {
		return
	}
	if cancel != nil {
		cancel()
	}

	l.deliverMu.Lock()
	l.stopped = true
	l.deliverMu.Unlock()

	if !wasStarted {
		return
	}

	select {
	case <-l.done:
		l.log.Info("monitor stopped")
	case <-time.After(l.stopTimeout):
		l.log.Warn("monitor did not exit within stop timeout", "timeout", l.stopTimeout)
	}
}

// Pause skips probing until Resume. The loop keeps its cadence.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == models.StateRunning {
		l.state = models.StatePaused
	}
}

// Resume restarts probing on the next tick.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == models.StatePaused {
		l.state = models.StateRunning
	}
}

// Toggle flips between running and paused and reports whether the loop is
// now paused.
func (l *Loop) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case models.StateRunning:
		l.state = models.StatePaused
	case models.StatePaused:
		l.state = models.StateRunning
	}
	return l.state == models.StatePaused
}

// Done is closed once the probe goroutine has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		if l.State() == models.StateRunning {
			l.tick(ctx)
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	result := l.prober.Probe(ctx, l.target)
	if ctx.Err() != nil {
		l.log.Debug("discarding result of cancelled probe")
		return
	}
	l.deliver(result)
}

func (l *Loop) deliver(result models.ProbeResult) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	if l.stopped {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.log.Error("observer panicked", "panic", r)
		}
	}()
	l.observer.OnResult(result)
}
