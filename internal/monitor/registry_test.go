package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/models"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	fastIntervals(t)
	r := NewRegistry(&fakeProber{}, 0, testOptions(tick))
	t.Cleanup(r.StopAll)
	return r
}

func TestRegistryCapacity(t *testing.T) {
	r := newTestRegistry(t)
	require.Equal(t, DefaultCapacity, r.Capacity())

	for _, target := range []string{"8.8.8.8", "1.1.1.1", "9.9.9.9", "192.168.1.1"} {
		_, err := r.Register(target, nil)
		require.NoError(t, err)
	}

	h, err := r.Register("208.67.222.222", nil)
	assert.Nil(t, h)
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrCapacity))
	assert.Equal(t, 4, r.Active())
}

// stubbornProber ignores cancellation until released.
type stubbornProber struct {
	started chan struct{}
	release chan struct{}
}

func (p *stubbornProber) Probe(_ context.Context, target string) models.ProbeResult {
	select {
	case p.started <- struct{}{}:
	default:
	}
	<-p.release
	return models.ProbeResult{Target: target, Status: models.StatusOK, Timestamp: time.Now()}
}

func TestRegistryKeepsSlotUntilLoopExits(t *testing.T) {
	fastIntervals(t)

	p := &stubbornProber{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRegistry(p, 1, testOptions(tick))
	t.Cleanup(r.StopAll)

	h, err := r.Register("8.8.8.8", nil)
	require.NoError(t, err)

	select {
	case <-p.started:
	case <-time.After(time.Second):
		t.Fatal("probe never started")
	}

	done := make(chan struct{})
	go func() {
		r.Unregister(h)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.State() == models.StateStopped }, time.Second, time.Millisecond)

	_, err = r.Register("1.1.1.1", nil)
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrCapacity))
	assert.Equal(t, 1, r.Active())

	close(p.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unregister did not return")
	}
	assert.Equal(t, 0, r.Active())

	_, err = r.Register("1.1.1.1", nil)
	require.NoError(t, err)
}

func TestRegistryUnregister(t *testing.T) {
	r := newTestRegistry(t)

	c := &collector{}
	h, err := r.Register("8.8.8.8", c)
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "8.8.8.8", h.Target())
	assert.Equal(t, models.StateRunning, h.State())

	require.Eventually(t, func() bool { return c.Len() >= 1 }, time.Second, tick)

	r.Unregister(h)
	assert.Equal(t, 0, r.Active())
	assert.Equal(t, models.StateStopped, h.State())

	delivered := c.Len()
	r.Unregister(h)
	r.Unregister(nil)
	time.Sleep(3 * tick)
	assert.Equal(t, delivered, c.Len())
	assert.Equal(t, 0, r.Active())
}

func TestRegistryFreedSlotCanBeReused(t *testing.T) {
	r := newTestRegistry(t)

	var handles []*Handle
	for _, target := range []string{"a.example", "b.example", "c.example", "d.example"} {
		h, err := r.Register(target, nil)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	r.Unregister(handles[1])

	_, err := r.Register("e.example", nil)
	require.NoError(t, err)

	var targets []string
	for _, h := range r.Handles() {
		targets = append(targets, h.Target())
	}
	assert.Equal(t, []string{"a.example", "c.example", "d.example", "e.example"}, targets)
}

func TestRegistryLookupAndSnapshots(t *testing.T) {
	r := newTestRegistry(t)

	h, err := r.Register("8.8.8.8", nil)
	require.NoError(t, err)
	h.Pause()

	found, ok := r.Lookup(h.ID)
	require.True(t, ok)
	assert.Same(t, h, found)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	snaps := r.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, h.ID, snaps[0].ID)
	assert.Equal(t, models.StatePaused, snaps[0].State)
}

func TestRegistryRejectsInvalidTarget(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("-f", nil)

	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrTarget))
	assert.Equal(t, 0, r.Active())
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	r := newTestRegistry(t)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Register("127.0.0.1", nil); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultCapacity, ok)
	assert.Equal(t, DefaultCapacity, r.Active())
}

func TestRegistryStopAll(t *testing.T) {
	r := newTestRegistry(t)

	h1, _ := r.Register("8.8.8.8", nil)
	h2, _ := r.Register("1.1.1.1", nil)

	r.StopAll()

	assert.Equal(t, 0, r.Active())
	assert.Equal(t, models.StateStopped, h1.State())
	assert.Equal(t, models.StateStopped, h2.State())
}
