package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingwatch/internal/logger"
)

func openTemp(t *testing.T) (*Catalog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ip_catalog.json")
	c, err := Open(path, logger.Discard())
	require.NoError(t, err)
	return c, path
}

func TestOpenSeedsDefaults(t *testing.T) {
	c, path := openTemp(t)

	assert.Equal(t, []string{"Cloudflare DNS", "Default Gateway", "Google DNS"}, c.Names())
	assert.FileExists(t, path)

	reopened, err := Open(path, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, c.List(), reopened.List())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip_catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c, err := Open(path, logger.Discard())

	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestOpenNullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip_catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	c, err := Open(path, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	added, err := c.Add("Google DNS", "8.8.8.8")
	require.NoError(t, err)
	assert.True(t, added)

	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	require.NoError(t, c.Reload())
	assert.Equal(t, 0, c.Len())

	added, err = c.Add("Quad9", "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestAddDuplicateName(t *testing.T) {
	c, _ := openTemp(t)

	added, err := c.Add("Google DNS", "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, added)

	target, ok := c.Lookup("Google DNS")
	require.True(t, ok)
	assert.Equal(t, "8.8.8.8", target)
}

func TestAddAndRemove(t *testing.T) {
	c, path := openTemp(t)

	added, err := c.Add("  Quad9 ", " 9.9.9.9  ")
	require.NoError(t, err)
	assert.True(t, added)

	target, ok := c.Lookup("Quad9")
	require.True(t, ok)
	assert.Equal(t, "9.9.9.9", target)

	reopened, err := Open(path, logger.Discard())
	require.NoError(t, err)
	target, ok = reopened.Lookup("Quad9")
	require.True(t, ok)
	assert.Equal(t, "9.9.9.9", target)

	removed, err := c.Remove("Quad9")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Remove("Quad9")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok = c.Lookup("Quad9")
	assert.False(t, ok)
	assert.NoFileExists(t, path+".tmp")
}

func TestAddRequiresNameAndTarget(t *testing.T) {
	c, _ := openTemp(t)

	added, err := c.Add("  ", "1.1.1.1")
	assert.False(t, added)
	assert.Error(t, err)

	added, err = c.Add("Empty", "")
	assert.False(t, added)
	assert.Error(t, err)
}

func TestListIsSortedByName(t *testing.T) {
	c, _ := openTemp(t)
	_, err := c.Add("Alpha", "10.0.0.1")
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 4)
	assert.Equal(t, Entry{Name: "Alpha", Target: "10.0.0.1"}, list[0])
	assert.Equal(t, "Google DNS", list[3].Name)
}

func TestResolve(t *testing.T) {
	c, _ := openTemp(t)

	assert.Equal(t, "1.1.1.1", c.Resolve("Cloudflare DNS"))
	assert.Equal(t, "example.com", c.Resolve(" example.com "))
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ip_catalog.json")
	c, err := Open(path, logger.Discard())
	require.NoError(t, err)

	// A directory where the temp file should go makes the write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	added, err := c.Add("Quad9", "9.9.9.9")
	assert.True(t, added)
	assert.Error(t, err)

	_, ok := c.Lookup("Quad9")
	assert.True(t, ok)
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	old := DebounceDelay
	DebounceDelay = 20 * time.Millisecond
	t.Cleanup(func() { DebounceDelay = old })

	c, path := openTemp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, func() { changes.Add(1) }) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"Edited": "10.1.1.1"}`), 0o644))

	require.Eventually(t, func() bool {
		_, ok := c.Lookup("Edited")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, c.Len())
	assert.GreaterOrEqual(t, changes.Load(), int32(1))

	cancel()
	assert.NoError(t, <-done)
}
