package csvlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingwatch/internal/logger"
	"pingwatch/internal/models"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestOpenWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ping_logs.csv")

	_, err := Open(path, logger.Discard())
	require.NoError(t, err)
	_, err = Open(path, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, [][]string{Header}, readAll(t, path))
}

func TestLogRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ping_logs.csv")
	l, err := Open(path, logger.Discard())
	require.NoError(t, err)

	ts := time.Date(2024, 1, 15, 14, 30, 45, 123456000, time.Local)
	require.NoError(t, l.Log(models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(23), Timestamp: ts}))
	require.NoError(t, l.Log(models.ProbeResult{Target: "10.0.0.1", Status: models.StatusTimeout, Timestamp: ts}))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-01-15T14:30:45.123456", "8.8.8.8", "23", "OK"}, rows[1])
	assert.Equal(t, []string{"2024-01-15T14:30:45.123456", "10.0.0.1", "", "TIMEOUT"}, rows[2])

	parsed, err := ParseTime(rows[1][0])
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestRowFractionalRTT(t *testing.T) {
	row := Row(models.ProbeResult{Target: "1.1.1.1", Status: models.StatusOK, RTT: models.Float(12.345)})
	assert.Equal(t, "12.345", row[2])
}

func TestConcurrentLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ping_logs.csv")
	l, err := Open(path, logger.Discard())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.OnResult(models.ProbeResult{Target: "8.8.8.8", Status: models.StatusOK, RTT: models.Float(1), Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, readAll(t, path), 101)
}

func TestOnResultSwallowsErrors(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "ping_logs.csv"), logger.Discard())
	require.NoError(t, err)

	l.path = filepath.Join(dir, "missing", "ping_logs.csv")

	assert.Error(t, l.Log(models.ProbeResult{Target: "8.8.8.8"}))
	assert.NotPanics(t, func() { l.OnResult(models.ProbeResult{Target: "8.8.8.8"}) })
}
