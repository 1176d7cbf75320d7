package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingwatch/internal/models"
)

const ms = time.Millisecond

var base = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

func ok(rtt float64) models.ProbeResult {
	return models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(rtt)}
}

func lost() models.ProbeResult {
	return models.ProbeResult{Target: "8.8.8.8", Status: models.StatusTimeout}
}

func BenchmarkAdd(b *testing.B) {
	buf := NewBuffer(DefaultSize)
	for i := 0; i < b.N; i++ {
		buf.Add(ok(float64(i)))
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	buf := NewBuffer(DefaultSize)

	for i := 0; i < 25; i++ {
		r := ok(float64(i))
		r.Timestamp = base.Add(time.Duration(i) * time.Second)
		buf.Add(r)
	}

	entries := buf.Entries()
	require.Len(t, entries, DefaultSize)
	assert.Equal(t, 5.0, *entries[0].RTT)
	assert.Equal(t, 24.0, *entries[DefaultSize-1].RTT)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}

	last, found := buf.Last()
	require.True(t, found)
	assert.Equal(t, 24.0, *last.RTT)
}

func TestBufferCapacity(t *testing.T) {
	assert := assert.New(t)

	buf := NewBuffer(3)
	assert.Equal(0, buf.Len())
	_, found := buf.Last()
	assert.False(found)

	buf.Add(ok(1))
	buf.Add(lost())
	assert.Equal(2, buf.Len())
	buf.Add(ok(1))
	buf.Add(ok(0))
	assert.Equal(3, buf.Len())
	assert.Equal(3, buf.Cap())
	assert.EqualValues(1, buf.Stats().Lost)

	// overwrite lost result
	buf.Add(ok(0))
	assert.EqualValues(0, buf.Stats().Lost)

	buf.Clear()
	assert.Equal(0, buf.Len())
	assert.Nil(buf.Stats())
}

func TestStatsEmpty(t *testing.T) {
	assert.Nil(t, NewBuffer(4).Stats())
}

func TestStatsFailed(t *testing.T) {
	assert := assert.New(t)

	buf := NewBuffer(4)
	buf.Add(lost())

	m := buf.Stats()
	assert.EqualValues(1, m.Sent)
	assert.EqualValues(1, m.Lost)
	assert.EqualValues(100, m.LossPct)
	assert.EqualValues(0, m.Best)
	assert.EqualValues(0, m.Mean)
	assert.Equal(models.StatusTimeout, m.LastStatus)
}

func TestStatsMedian(t *testing.T) {
	buf := NewBuffer(5)
	buf.Add(ok(300))
	buf.Add(ok(200))
	buf.Add(ok(100))
	buf.Add(ok(0))
	assert.EqualValues(t, 150*ms, buf.Stats().Median)

	buf.Add(ok(400))
	assert.EqualValues(t, 200*ms, buf.Stats().Median)
}

func TestStats(t *testing.T) {
	assert := assert.New(t)

	buf := NewBuffer(8)
	buf.Add(ok(100))
	buf.Add(ok(100))
	buf.Add(lost())

	m := buf.Stats()
	assert.EqualValues(100*ms, m.Best)
	assert.EqualValues(100*ms, m.Worst)
	assert.EqualValues(100*ms, m.Mean)
	assert.EqualValues(0, m.StdDev)
	assert.EqualValues(3, m.Sent)
	assert.EqualValues(1, m.Lost)
	assert.EqualValues(0, m.Last)

	buf.Add(ok(200))
	buf.Add(ok(100))
	buf.Add(lost())

	m = buf.Stats()
	assert.EqualValues(100*ms, m.Best)
	assert.EqualValues(200*ms, m.Worst)
	assert.EqualValues(125*ms, m.Mean)
	assert.EqualValues(100*ms, m.Median)
	assert.EqualValues(43301270, m.StdDev)
	assert.EqualValues(6, m.Sent)
	assert.EqualValues(2, m.Lost)

	buf.Add(ok(12.5))
	assert.EqualValues(12500*time.Microsecond, buf.Stats().Last)
	assert.Equal(models.StatusOK, buf.Stats().LastStatus)
}

func TestStatsIgnoresOKWithoutRTT(t *testing.T) {
	buf := NewBuffer(4)
	buf.Add(models.ProbeResult{Status: models.StatusOK})
	buf.Add(ok(10))

	m := buf.Stats()
	assert.EqualValues(t, 0, m.Lost)
	assert.EqualValues(t, 10*ms, m.Best)
	assert.EqualValues(t, 10*ms, m.Mean)
}

func TestBook(t *testing.T) {
	book := NewBook(2)

	book.OnResult(models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(1)})
	book.OnResult(models.ProbeResult{Target: "1.1.1.1", Status: models.StatusTimeout})
	book.OnResult(models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(2)})
	book.OnResult(models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(3)})

	assert.Equal(t, []string{"1.1.1.1", "8.8.8.8"}, book.Targets())

	buf, found := book.Lookup("8.8.8.8")
	require.True(t, found)
	assert.Equal(t, 2, buf.Len())

	book.Forget("8.8.8.8")
	_, found = book.Lookup("8.8.8.8")
	assert.False(t, found)
	assert.Equal(t, []string{"1.1.1.1"}, book.Targets())
}
