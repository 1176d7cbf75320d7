package ping

import (
	"context"
	"fmt"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"golang.org/x/net/icmp"

	"pingwatch/internal/models"
)

// SocketProber sends the echo request itself instead of running the ping
// utility.
type SocketProber struct {
	Timeout    time.Duration
	Size       int // payload bytes, 0 keeps the library default
	Privileged bool
	Now        func() time.Time
}

// NewSocketProber creates a prober that waits up to timeout for one reply.
func NewSocketProber(timeout time.Duration, size int, privileged bool) *SocketProber {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &SocketProber{
		Timeout:    timeout,
		Size:       size,
		Privileged: privileged,
		Now:        time.Now,
	}
}

// Probe implements models.Prober.
func (p *SocketProber) Probe(ctx context.Context, target string) models.ProbeResult {
	ts := time.Now()
	if p.Now != nil {
		ts = p.Now()
	}

	if err := ValidateTarget(target); err != nil {
		return failed(target, ts, models.ReasonInvalidTarget, err.Error())
	}

	pinger, err := probing.NewPinger(target)
	if err != nil {
		return failed(target, ts, models.ReasonHostNotFound, fmt.Sprintf("ping: cannot resolve %s: %v", target, err))
	}

	pinger.Count = 1
	pinger.Timeout = p.Timeout
	if p.Size > 0 {
		pinger.Size = p.Size
	}
	pinger.SetPrivileged(p.Privileged)

	var (
		mu    sync.Mutex
		reply *probing.Packet
	)
	pinger.OnRecv = func(pkt *probing.Packet) {
		mu.Lock()
		defer mu.Unlock()
		if reply == nil {
			cp := *pkt
			reply = &cp
		}
	}

	if err := pinger.RunWithContext(ctx); err != nil {
		return failed(target, ts, models.ReasonExecFailure, "ping: "+err.Error())
	}

	mu.Lock()
	defer mu.Unlock()

	if reply == nil {
		return models.ProbeResult{
			Target:    target,
			Status:    models.StatusTimeout,
			Reason:    models.ReasonToolTimeout,
			Timestamp: ts,
			RawOutput: "Request timed out.",
		}
	}

	rtt := float64(reply.Rtt) / float64(time.Millisecond)
	result := models.ProbeResult{
		Target:       target,
		Status:       models.StatusOK,
		RTT:          models.Float(rtt),
		PayloadBytes: models.Int(reply.Nbytes),
		Timestamp:    ts,
		RawOutput:    fmt.Sprintf("Reply from %s: bytes=%d time=%.3fms TTL=%d", reply.IPAddr, reply.Nbytes, rtt, reply.TTL),
	}
	if reply.TTL >= 0 && reply.TTL <= 255 {
		result.TTL = models.Int(reply.TTL)
	}
	return result
}

// SocketsAvailable reports whether this process may open an ICMP socket:
// a raw one when privileged, a datagram one otherwise.
func SocketsAvailable(privileged bool) bool {
	network := "udp4"
	if privileged {
		network = "ip4:icmp"
	}

	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
