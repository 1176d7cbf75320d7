// Package history keeps the most recent probe results per target.
package history

import (
	"math"
	"sort"
	"sync"
	"time"

	"pingwatch/internal/models"
)

// DefaultSize is how many results a panel shows.
const DefaultSize = 20

// Buffer is a fixed-size FIFO of probe results for one target. Once full,
// adding a result evicts the oldest.
type Buffer struct {
	results  []models.ProbeResult
	count    int
	position int
	sync.RWMutex
}

// NewBuffer creates a Buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	return &Buffer{
		results: make([]models.ProbeResult, capacity),
	}
}

// Add appends a result.
func (b *Buffer) Add(r models.ProbeResult) {
	b.Lock()

	b.results[b.position] = r
	b.position = (b.position + 1) % len(b.results)

	if b.count < len(b.results) {
		b.count++
	}

	b.Unlock()
}

// Len returns the number of stored results.
func (b *Buffer) Len() int {
	b.RLock()
	defer b.RUnlock()
	return b.count
}

// Cap returns the capacity.
func (b *Buffer) Cap() int { return len(b.results) }

// Entries returns a copy of the stored results, oldest first.
func (b *Buffer) Entries() []models.ProbeResult {
	b.RLock()
	defer b.RUnlock()
	return b.entries()
}

func (b *Buffer) entries() []models.ProbeResult {
	out := make([]models.ProbeResult, 0, b.count)
	start := (b.position - b.count + len(b.results)) % len(b.results)
	for i := 0; i < b.count; i++ {
		out = append(out, b.results[(start+i)%len(b.results)])
	}
	return out
}

// Last returns the most recent result.
func (b *Buffer) Last() (models.ProbeResult, bool) {
	b.RLock()
	defer b.RUnlock()

	if b.count == 0 {
		return models.ProbeResult{}, false
	}
	return b.results[(b.position-1+len(b.results))%len(b.results)], true
}

// Clear drops all results.
func (b *Buffer) Clear() {
	b.Lock()
	b.count = 0
	b.position = 0
	b.Unlock()
}

// Stats aggregates the stored results into a single data point. It returns
// nil for an empty buffer.
func (b *Buffer) Stats() *models.Metrics {
	b.RLock()
	defer b.RUnlock()

	return compute(b.entries())
}

func compute(results []models.ProbeResult) *models.Metrics {
	numTotal := len(results)
	if numTotal == 0 {
		return nil
	}

	numFailure := 0
	data := make([]float64, 0, numTotal)
	var best, worst, stddev, median time.Duration
	var total, sumSquares, mean float64
	var extremeFound bool

	for i := range results {
		curr := &results[i]
		if !curr.Succeeded() {
			numFailure++
			continue
		}
		ms, ok := curr.RTTValue()
		if !ok {
			continue
		}

		rtt := time.Duration(ms * float64(time.Millisecond))
		data = append(data, float64(rtt))

		if !extremeFound || rtt < best {
			best = rtt
		}
		if !extremeFound || rtt > worst {
			worst = rtt
		}

		extremeFound = true
		total += float64(rtt)
	}

	if size := len(data); size > 0 {
		mean = total / float64(size)
		for _, rtt := range data {
			sumSquares += math.Pow(rtt-mean, 2)
		}
		stddev = time.Duration(math.Sqrt(sumSquares / float64(size)))

		sort.Float64s(data)
		if size%2 == 0 {
			median = time.Duration((data[size/2-1] + data[size/2]) / 2)
		} else {
			median = time.Duration(data[size/2])
		}
	}

	last := results[numTotal-1]
	var lastRTT time.Duration
	if ms, ok := last.RTTValue(); ok {
		lastRTT = time.Duration(ms * float64(time.Millisecond))
	}

	return &models.Metrics{
		Sent:       numTotal,
		Lost:       numFailure,
		LossPct:    float64(numFailure) / float64(numTotal) * 100,
		Last:       lastRTT,
		Best:       best,
		Worst:      worst,
		Median:     median,
		Mean:       time.Duration(mean),
		StdDev:     stddev,
		LastStatus: last.Status,
	}
}
