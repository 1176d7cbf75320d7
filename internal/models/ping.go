package models

import "time"

// Status is the outcome class of a single probe.
type Status string

const (
	StatusOK      Status = "OK"
	StatusTimeout Status = "TIMEOUT"
	StatusError   Status = "ERROR"
)

// Reason narrows a TIMEOUT or ERROR down to something an operator can act on.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonHostNotFound   Reason = "host_not_found"
	ReasonUnreachable    Reason = "unreachable"
	ReasonToolTimeout    Reason = "tool_timeout"
	ReasonProcessTimeout Reason = "process_timeout"
	ReasonExecFailure    Reason = "exec_failure"
	ReasonInvalidTarget  Reason = "invalid_target"
	ReasonUnparsed       Reason = "unparsed"
	ReasonEmptyOutput    Reason = "empty_output"
)

// ProbeResult represents a single echo request/response cycle against a
// target. It is a value type: once delivered to an observer nobody mutates it.
type ProbeResult struct {
	Target       string    `json:"target"`
	Status       Status    `json:"status"`
	Reason       Reason    `json:"reason,omitempty"`
	RTT          *float64  `json:"rtt_ms"` // milliseconds
	TTL          *int      `json:"ttl"`
	PayloadBytes *int      `json:"payload_bytes"`
	Timestamp    time.Time `json:"timestamp"`
	RawOutput    string    `json:"raw_output"`
}

// Succeeded reports whether the probe got an echo reply.
func (r ProbeResult) Succeeded() bool {
	return r.Status == StatusOK
}

// RTTValue returns the round-trip time in milliseconds, if known.
func (r ProbeResult) RTTValue() (float64, bool) {
	if r.RTT == nil {
		return 0, false
	}
	return *r.RTT, true
}

// TTLValue returns the reply TTL, if known.
func (r ProbeResult) TTLValue() (int, bool) {
	if r.TTL == nil {
		return 0, false
	}
	return *r.TTL, true
}

// PayloadValue returns the reply payload size in bytes, if known.
func (r ProbeResult) PayloadValue() (int, bool) {
	if r.PayloadBytes == nil {
		return 0, false
	}
	return *r.PayloadBytes, true
}

// Float returns a pointer to v. Handy for building results in tests.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
