package database

import (
	"log/slog"

	"pingwatch/internal/models"
)

// Recorder is an Observer that saves every result. Run it behind a monitor
// queue so a slow disk never holds up a probe loop.
type Recorder struct {
	db  *DB
	log *slog.Logger
}

// NewRecorder creates a Recorder writing to db.
func NewRecorder(db *DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, log: logger}
}

// OnResult implements models.Observer.
func (r *Recorder) OnResult(result models.ProbeResult) {
	if err := r.db.SaveResult(result); err != nil {
		r.log.Error("failed to save result", "target", result.Target, "error", err)
	}
}
