package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
	"pingwatch/internal/report"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// intParam reads a positive integer query parameter, falling back to def.
func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		http.Error(w, "result database disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleRecent handles /api/recent?hours=N
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	results, err := s.store.GetRecent(intParam(r, "hours", 24))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.ProbeResult{}
	}
	writeJSON(w, results)
}

// handleStats handles /api/stats?hours=N
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	stats, err := s.store.GetStats(intParam(r, "hours", 24))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []models.Stats{}
	}
	writeJSON(w, stats)
}

// handleOutages handles /api/outages?days=N
func (s *Server) handleOutages(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	outages, err := s.store.GetOutages(intParam(r, "days", 7))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if outages == nil {
		outages = []models.Outage{}
	}
	writeJSON(w, outages)
}

// handleHourOfDay handles /api/hourly?days=N
func (s *Server) handleHourOfDay(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	points, err := s.store.GetHourOfDay(intParam(r, "days", 30))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []models.HourOfDay{}
	}
	writeJSON(w, points)
}

// handleDaysAtHour handles /api/hourly/{hour}
func (s *Server) handleDaysAtHour(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	hour, err := strconv.Atoi(r.PathValue("hour"))
	if err != nil || hour < 0 || hour > 23 {
		http.Error(w, "hour must be between 0 and 23", http.StatusBadRequest)
		return
	}

	days, err := s.store.GetDaysAtHour(hour)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []models.DayAtHour{}
	}
	writeJSON(w, days)
}

type monitorView struct {
	monitor.Snapshot
	Last *models.ProbeResult `json:"last,omitempty"`
}

// handleMonitors handles /api/monitors
func (s *Server) handleMonitors(w http.ResponseWriter, r *http.Request) {
	if s.monitors == nil {
		http.Error(w, "no monitors running in this process", http.StatusServiceUnavailable)
		return
	}

	snaps := s.monitors.Snapshots()
	views := make([]monitorView, 0, len(snaps))
	for _, snap := range snaps {
		v := monitorView{Snapshot: snap}
		if s.book != nil {
			if buf, ok := s.book.Lookup(snap.Target); ok {
				if last, ok := buf.Last(); ok {
					v.Last = &last
				}
			}
		}
		views = append(views, v)
	}
	writeJSON(w, views)
}

type historyView struct {
	Target  string               `json:"target"`
	Entries []models.ProbeResult `json:"entries"`
	Lines   []string             `json:"lines"`
	Stats   *models.Metrics      `json:"stats"`
}

// handleHistory handles /api/history?target=T
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.book == nil {
		http.Error(w, "no history kept in this process", http.StatusServiceUnavailable)
		return
	}

	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "target parameter required", http.StatusBadRequest)
		return
	}

	buf, ok := s.book.Lookup(target)
	if !ok {
		http.Error(w, "no history for "+target, http.StatusNotFound)
		return
	}

	entries := buf.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = report.FormatLine(e)
	}

	writeJSON(w, historyView{
		Target:  target,
		Entries: entries,
		Lines:   lines,
		Stats:   buf.Stats(),
	})
}
