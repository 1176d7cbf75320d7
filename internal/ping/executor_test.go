package ping

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"pingwatch/internal/models"
)

func TestCommandLine(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"linux", []string{"-c", "1", "-W", "5", "8.8.8.8"}},
		{"darwin", []string{"-c", "1", "-t", "5", "8.8.8.8"}},
		{"freebsd", []string{"-c", "1", "-t", "5", "8.8.8.8"}},
		{"windows", []string{"-n", "1", "-w", "5000", "8.8.8.8"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := commandLine(tt.goos, "ping", "8.8.8.8", 5*time.Second)
			assert.Equal(t, "ping", name)
			assert.Equal(t, tt.want, args)
		})
	}

	t.Run("sub-second wait rounds up to one second", func(t *testing.T) {
		_, args := commandLine("linux", "ping", "h", 200*time.Millisecond)
		assert.Equal(t, []string{"-c", "1", "-W", "1", "h"}, args)
	})
}

func TestDecodeOutput(t *testing.T) {
	assert.Equal(t, "Resposta de 8.8.8.8: tempo=5ms", decodeOutput([]byte("Resposta de 8.8.8.8: tempo=5ms"), nil))

	legacy := []byte("Estat\xa1sticas do Ping")
	assert.Equal(t, "Estatísticas do Ping", decodeOutput(legacy, charmap.CodePage850))

	replaced := decodeOutput([]byte("bad \xff byte"), nil)
	assert.Equal(t, "bad � byte", replaced)
}

// fakeTool writes an executable shell script standing in for ping.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "ping")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testExecutor(binary string, processTimeout time.Duration) *CommandExecutor {
	return &CommandExecutor{
		Binary:         binary,
		GOOS:           "linux",
		ToolTimeout:    time.Second,
		ProcessTimeout: processTimeout,
	}
}

func TestExecuteReturnsOutput(t *testing.T) {
	tool := fakeTool(t, `echo "64 bytes from $5: icmp_seq=1 ttl=64 time=0.045 ms"`)

	out, err := testExecutor(tool, 5*time.Second).Execute(context.Background(), "127.0.0.1")

	require.NoError(t, err)
	assert.False(t, out.TimedOut)
	assert.Contains(t, out.Raw, "64 bytes from 127.0.0.1")
}

func TestExecuteNonZeroExitKeepsOutput(t *testing.T) {
	tool := fakeTool(t, `echo "ping: unknown host $5" >&2; exit 2`)

	out, err := testExecutor(tool, 5*time.Second).Execute(context.Background(), "nosuchhost.invalid")

	require.NoError(t, err)
	assert.Contains(t, out.Raw, "unknown host nosuchhost.invalid")
}

func TestExecuteProcessTimeout(t *testing.T) {
	tool := fakeTool(t, `exec sleep 5`)

	start := time.Now()
	out, err := testExecutor(tool, 200*time.Millisecond).Execute(context.Background(), "127.0.0.1")

	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.Empty(t, out.Raw)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecuteCancelled(t *testing.T) {
	tool := fakeTool(t, `exec sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := testExecutor(tool, 5*time.Second).Execute(ctx, "127.0.0.1")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-ping")

	_, err := testExecutor(missing, time.Second).Execute(context.Background(), "127.0.0.1")

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "127.0.0.1", execErr.Target)
}

type fakeExecutor struct {
	out Output
	err error
	got string
}

func (f *fakeExecutor) Execute(_ context.Context, target string) (Output, error) {
	f.got = target
	return f.out, f.err
}

func TestCommandProber(t *testing.T) {
	now := func() time.Time { return parseTime }

	t.Run("parses output", func(t *testing.T) {
		fe := &fakeExecutor{out: Output{Raw: "Reply from 8.8.8.8: bytes=32 time=23ms TTL=111"}}
		p := &CommandProber{Executor: fe, Now: now}

		result := p.Probe(context.Background(), "8.8.8.8")

		assert.Equal(t, "8.8.8.8", fe.got)
		assert.Equal(t, models.StatusOK, result.Status)
		assert.Equal(t, models.Float(23), result.RTT)
		assert.Equal(t, models.Int(111), result.TTL)
		assert.Equal(t, models.Int(32), result.PayloadBytes)
		assert.Equal(t, parseTime, result.Timestamp)
	})

	t.Run("process timeout", func(t *testing.T) {
		p := &CommandProber{Executor: &fakeExecutor{out: Output{TimedOut: true}}, Now: now}

		result := p.Probe(context.Background(), "10.255.255.1")

		assert.Equal(t, models.StatusTimeout, result.Status)
		assert.Equal(t, models.ReasonProcessTimeout, result.Reason)
		assert.Equal(t, "Timeout expired", result.RawOutput)
		assert.Nil(t, result.RTT)
	})

	t.Run("launch failure", func(t *testing.T) {
		err := &ExecError{Target: "8.8.8.8", Err: os.ErrPermission}
		p := &CommandProber{Executor: &fakeExecutor{err: err}, Now: now}

		result := p.Probe(context.Background(), "8.8.8.8")

		assert.Equal(t, models.StatusError, result.Status)
		assert.Equal(t, models.ReasonExecFailure, result.Reason)
		assert.Contains(t, result.RawOutput, "permission denied")
	})

	t.Run("invalid target never reaches the executor", func(t *testing.T) {
		fe := &fakeExecutor{}
		p := &CommandProber{Executor: fe, Now: now}

		result := p.Probe(context.Background(), "-f")

		assert.Empty(t, fe.got)
		assert.Equal(t, models.StatusError, result.Status)
		assert.Equal(t, models.ReasonInvalidTarget, result.Reason)
	})
}

// TestCommandProberLive runs the real ping utility against loopback.
func TestCommandProberLive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live ping in short mode")
	}
	if _, err := exec.LookPath("ping"); err != nil {
		t.Skip("ping utility not available")
	}
	p := NewCommandProber(2*time.Second, 5*time.Second)

	result := p.Probe(context.Background(), "127.0.0.1")

	assert.Equal(t, "127.0.0.1", result.Target)
	assert.NotEmpty(t, result.RawOutput)
	if result.Status == models.StatusOK {
		assert.NotNil(t, result.RTT)
	}
}
