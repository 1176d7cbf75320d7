// Package ping runs single ICMP echo probes and turns whatever the probe
// produced into a models.ProbeResult.
package ping

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
)

const (
	DefaultToolTimeout    = 5 * time.Second
	DefaultProcessTimeout = 10 * time.Second
)

// Output is what a single run of the ping utility produced.
type Output struct {
	Raw      string
	TimedOut bool // the process hit the hard timeout and was killed
}

// Executor runs the ping utility once against a target.
type Executor interface {
	Execute(ctx context.Context, target string) (Output, error)
}

// ExecError means the probe utility could not be launched or did not run
// to completion for a reason other than the hard timeout.
type ExecError struct {
	Target string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("ping %s: %v", e.Target, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// CommandExecutor invokes the OS ping utility as a subprocess.
type CommandExecutor struct {
	Binary         string        // defaults to "ping"
	GOOS           string        // defaults to runtime.GOOS
	ToolTimeout    time.Duration // wait budget handed to the utility
	ProcessTimeout time.Duration // hard limit after which the process is killed

	// Charset decodes output that is not valid UTF-8. Defaults to the
	// console code page on windows and nil elsewhere.
	Charset encoding.Encoding
}

// NewCommandExecutor creates an executor for the current platform.
func NewCommandExecutor(toolTimeout, processTimeout time.Duration) *CommandExecutor {
	if toolTimeout <= 0 {
		toolTimeout = DefaultToolTimeout
	}
	if processTimeout <= toolTimeout {
		processTimeout = 2 * toolTimeout
	}
	return &CommandExecutor{
		Binary:         "ping",
		GOOS:           runtime.GOOS,
		ToolTimeout:    toolTimeout,
		ProcessTimeout: processTimeout,
		Charset:        defaultCharset(runtime.GOOS),
	}
}

// Execute runs exactly one echo request. A process that outlives
// ProcessTimeout is killed and reported as Output{TimedOut: true}.
// Cancelling ctx kills the process as well and returns ctx.Err().
func (e *CommandExecutor) Execute(ctx context.Context, target string) (Output, error) {
	name, args := commandLine(e.goos(), e.binary(), target, e.ToolTimeout)

	procCtx, cancel := context.WithTimeout(ctx, e.ProcessTimeout)
	defer cancel()

	cmd := exec.CommandContext(procCtx, name, args...)
	cmd.WaitDelay = time.Second
	hideWindow(cmd)

	out, err := cmd.CombinedOutput()

	if ctx.Err() != nil {
		return Output{}, ctx.Err()
	}
	if errors.Is(procCtx.Err(), context.DeadlineExceeded) {
		return Output{TimedOut: true}, nil
	}
	if err != nil {
		// ping exits non-zero on timeouts and unknown hosts; that output
		// is still meaningful to the parser.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Output{}, &ExecError{Target: target, Err: err}
		}
	}

	return Output{Raw: decodeOutput(out, e.Charset)}, nil
}

func (e *CommandExecutor) binary() string {
	if e.Binary == "" {
		return "ping"
	}
	return e.Binary
}

func (e *CommandExecutor) goos() string {
	if e.GOOS == "" {
		return runtime.GOOS
	}
	return e.GOOS
}

// commandLine builds the platform-specific invocation for one echo request.
func commandLine(goos, binary, target string, wait time.Duration) (string, []string) {
	seconds := int(wait.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	switch goos {
	case "windows":
		return binary, []string{"-n", "1", "-w", strconv.FormatInt(wait.Milliseconds(), 10), target}
	case "darwin", "freebsd", "netbsd", "openbsd", "dragonfly":
		return binary, []string{"-c", "1", "-t", strconv.Itoa(seconds), target}
	default:
		return binary, []string{"-c", "1", "-W", strconv.Itoa(seconds), target}
	}
}
