package models

import "context"

// State is the lifecycle state of a monitor loop.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Prober issues one echo request against a target and folds every outcome,
// failures included, into a ProbeResult. The timestamp is captured right
// before the request goes out.
type Prober interface {
	Probe(ctx context.Context, target string) ProbeResult
}

// Observer receives probe results. It is called from the monitor loop's own
// goroutine; observers with thread affinity must re-dispatch.
type Observer interface {
	OnResult(result ProbeResult)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(result ProbeResult)

// OnResult calls f(result).
func (f ObserverFunc) OnResult(result ProbeResult) {
	f(result)
}

// Observers fans a result out to every observer in order.
type Observers []Observer

// OnResult delivers result to each non-nil observer.
func (o Observers) OnResult(result ProbeResult) {
	for _, obs := range o {
		if obs != nil {
			obs.OnResult(result)
		}
	}
}
