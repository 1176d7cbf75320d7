package models

import "time"

// Stats represents aggregated statistics for a target
type Stats struct {
	Target      string  `json:"target"`
	TotalProbes int     `json:"total_probes"`
	Successful  int     `json:"successful_probes"`
	Timeouts    int     `json:"timeouts"`
	Errors      int     `json:"errors"`
	AvgRTT      float64 `json:"avg_rtt"`
	MaxRTT      float64 `json:"max_rtt"`
	MinRTT      float64 `json:"min_rtt"`
	PacketLoss  float64 `json:"packet_loss"`
}

// Metrics is a data point computed from a window of ProbeResults.
type Metrics struct {
	Sent       int           `json:"sent"`
	Lost       int           `json:"lost"`
	LossPct    float64       `json:"loss_pct"`
	Last       time.Duration `json:"last"`
	Best       time.Duration `json:"best"`
	Worst      time.Duration `json:"worst"`
	Median     time.Duration `json:"median"`
	Mean       time.Duration `json:"mean"`
	StdDev     time.Duration `json:"stddev"`
	LastStatus Status        `json:"last_status"`
}

// Outage represents a run of consecutive failed probes
type Outage struct {
	Target       string    `json:"target"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	FailedChecks int       `json:"failed_checks"`
	Duration     string    `json:"duration"`
}

// HourOfDay aggregates failures and latency for one hour of the day across
// several days.
type HourOfDay struct {
	Hour          int     `json:"hour"`
	Target        string  `json:"target"`
	FailureRate   float64 `json:"failure_rate"`
	AvgRTT        float64 `json:"avg_rtt"`
	MaxRTT        float64 `json:"max_rtt"`
	TotalFailures int     `json:"total_failures"`
	TotalProbes   int     `json:"total_probes"`
	DaysWithData  int     `json:"days_with_data"`
}

// DayAtHour is one day's numbers for a given hour of the day.
type DayAtHour struct {
	Date         string  `json:"date"`
	Target       string  `json:"target"`
	TotalProbes  int     `json:"total_probes"`
	FailedProbes int     `json:"failed_probes"`
	AvgRTT       float64 `json:"avg_rtt"`
	MaxRTT       float64 `json:"max_rtt"`
	FailureRate  float64 `json:"failure_rate"`
}
