package ping

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pingwatch/internal/config"
	"pingwatch/internal/models"
)

// CommandProber probes by running the OS ping utility and parsing its output.
type CommandProber struct {
	Executor Executor
	Parser   *Parser
	Now      func() time.Time
}

// NewCommandProber returns a prober backed by the platform ping utility.
func NewCommandProber(toolTimeout, processTimeout time.Duration) *CommandProber {
	return &CommandProber{
		Executor: NewCommandExecutor(toolTimeout, processTimeout),
		Parser:   DefaultParser,
		Now:      time.Now,
	}
}

// Probe implements models.Prober. The timestamp is taken right before the
// utility is launched.
func (p *CommandProber) Probe(ctx context.Context, target string) models.ProbeResult {
	ts := p.now()

	if err := ValidateTarget(target); err != nil {
		return failed(target, ts, models.ReasonInvalidTarget, err.Error())
	}

	out, err := p.Executor.Execute(ctx, target)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return failed(target, ts, models.ReasonExecFailure, execErr.Error())
		}
		return failed(target, ts, models.ReasonExecFailure, err.Error())
	}

	if out.TimedOut {
		return models.ProbeResult{
			Target:    target,
			Status:    models.StatusTimeout,
			Reason:    models.ReasonProcessTimeout,
			Timestamp: ts,
			RawOutput: "Timeout expired",
		}
	}

	parser := p.Parser
	if parser == nil {
		parser = DefaultParser
	}
	return parser.Parse(out.Raw, target, ts)
}

func (p *CommandProber) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func failed(target string, ts time.Time, reason models.Reason, msg string) models.ProbeResult {
	return models.ProbeResult{
		Target:    target,
		Status:    models.StatusError,
		Reason:    reason,
		Timestamp: ts,
		RawOutput: msg,
	}
}

// NewProber picks the probe implementation for cfg.Prober. In auto mode a
// raw or datagram ICMP socket is preferred and the ping utility is the
// fallback.
func NewProber(cfg config.Config, logger *slog.Logger) models.Prober {
	switch cfg.Prober {
	case config.ProberCommand:
		logger.Debug("using ping command prober")
		return NewCommandProber(cfg.ToolTimeout, cfg.ProcessTimeout)
	case config.ProberSocket:
		logger.Debug("using socket prober", "privileged", cfg.Privileged)
		return NewSocketProber(cfg.ToolTimeout, cfg.PayloadSize, cfg.Privileged)
	}

	for _, privileged := range []bool{cfg.Privileged, !cfg.Privileged} {
		if SocketsAvailable(privileged) {
			logger.Debug("using socket prober", "privileged", privileged)
			return NewSocketProber(cfg.ToolTimeout, cfg.PayloadSize, privileged)
		}
	}

	logger.Debug("ICMP sockets unavailable, falling back to ping command")
	return NewCommandProber(cfg.ToolTimeout, cfg.ProcessTimeout)
}
