// Package monitor runs one probe loop per target, bounds how many run at
// once and carries their results to observers.
package monitor

import (
	"context"
	"log/slog"
	"sync"

	"pingwatch/internal/models"
)

// Maintainer is periodic housekeeping on the result store.
type Maintainer interface {
	AggregateHourlyPatterns() error
	ArchiveOldData() error
}

// Monitor coordinates headless monitoring: loops publish into a queue and a
// single goroutine drains it into the sink.
type Monitor struct {
	registry *Registry
	queue    *Queue
	sink     models.Observer
	maint    Maintainer
	log      *slog.Logger
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a Monitor. maint may be nil.
func New(registry *Registry, queue *Queue, sink models.Observer, maint Maintainer, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		registry: registry,
		queue:    queue,
		sink:     sink,
		maint:    maint,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins monitoring targets. If any target cannot be registered the
// ones already started are stopped again.
func (m *Monitor) Start(targets []string) error {
	m.log.Info("starting monitor", "targets", len(targets))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.queue.Run(m.ctx, m.sink)
	}()

	if m.maint != nil {
		m.wg.Add(1)
		go m.maintenanceWorker()
	}

	for _, target := range targets {
		if _, err := m.registry.Register(target, m.queue); err != nil {
			m.Stop()
			return err
		}
	}

	m.log.Info("monitor started", "targets", targets)
	return nil
}

// Registry returns the registry the monitor registers into.
func (m *Monitor) Registry() *Registry { return m.registry }

// Stop stops every loop and then the drain and maintenance goroutines.
func (m *Monitor) Stop() {
	m.log.Info("stopping monitor")
	m.registry.StopAll()
	m.cancel()
}

// Wait blocks until all goroutines finish, then delivers results that were
// still queued.
func (m *Monitor) Wait() {
	m.wg.Wait()
	if n := m.queue.Flush(m.sink); n > 0 {
		m.log.Debug("flushed queued results", "count", n)
	}
	m.log.Info("monitor stopped")
}
