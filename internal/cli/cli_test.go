package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingwatch/internal/catalog"
	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/logger"
	"pingwatch/internal/models"
)

// isolate runs the test in an empty directory with an empty HOME so no
// pingwatch.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestResolveTargets(t *testing.T) {
	dir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(dir, "catalog.json"), logger.Discard())
	require.NoError(t, err)

	got := resolveTargets(cat, []string{"Google DNS", " 10.0.0.1 ", ""}, nil)
	assert.Equal(t, []string{"8.8.8.8", "10.0.0.1"}, got)

	got = resolveTargets(nil, nil, []string{"Cloudflare DNS", "1.1.1.1"})
	assert.Equal(t, []string{"Cloudflare DNS", "1.1.1.1"}, got)

	assert.Empty(t, resolveTargets(cat, nil, nil))
}

func TestConsoleObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := consoleObserver(&buf)
	obs.OnResult(models.ProbeResult{
		Target:    "10.0.0.1",
		Status:    models.StatusTimeout,
		Timestamp: time.Now(),
	})
	assert.Contains(t, buf.String(), "!!! Request timed out.")
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestCatalogCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "targets.json")

	out, err := execute(t, "catalog", "list", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Google DNS")
	assert.FileExists(t, path)

	out, err = execute(t, "catalog", "add", "Office Router", "10.0.0.1", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "added Office Router -> 10.0.0.1")

	_, err = execute(t, "catalog", "add", "Office Router", "10.0.0.2", "--catalog", path)
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrCatalog))

	_, err = execute(t, "catalog", "add", "Broken", "not a host!", "--catalog", path)
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrTarget))

	out, err = execute(t, "catalog", "get", "Office Router", "--catalog", path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1\n", out)

	out, err = execute(t, "catalog", "remove", "Office Router", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "removed Office Router")

	_, err = execute(t, "catalog", "get", "Office Router", "--catalog", path)
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrCatalog))
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() {
		require.NoError(t, rootCmd.PersistentFlags().Set("max-monitors", "4"))
	})

	_, err := execute(t, "catalog", "list", "--catalog", filepath.Join(dir, "c.json"), "--max-monitors", "-1")
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrConfig))
}

func TestConfigFileIsRead(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pingwatch.yaml"), []byte("history_size: 0\n"), 0o644))

	_, err := execute(t, "catalog", "list", "--catalog", filepath.Join(dir, "c.json"))
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrConfig))
}

func TestMissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() { cfgFile = "" })

	_, err := execute(t, "catalog", "list", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRunRequiresTargets(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "run", "--no-web", "--db", filepath.Join(dir, "pw.db"), "--catalog", filepath.Join(dir, "none.json"))
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrConfig))
	assert.NoFileExists(t, filepath.Join(dir, "none.json"))
}

func TestProbeInvalidTarget(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "probe", "bad target!", "--prober", "command", "--catalog", filepath.Join(dir, "none.json"))
	assert.True(t, pwerrors.IsCode(err, pwerrors.ErrTarget))
	assert.Contains(t, out, "!!! ERROR for bad target!")
}

func TestReportCommand(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "report", "--db", filepath.Join(dir, "pw.db"), "--out", filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.FileExists(t, filepath.Join(dir, "reports", entries[0].Name(), "summary.txt"))
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	SetVersionInfo("1.2.3", "abc123", "2024-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pingwatch 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}
