// Package web serves the JSON API and a small dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"pingwatch/internal/history"
	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
)

//go:embed static
var staticFiles embed.FS

// Store is the read side of the result database.
type Store interface {
	GetRecent(hours int) ([]models.ProbeResult, error)
	GetStats(hours int) ([]models.Stats, error)
	GetOutages(days int) ([]models.Outage, error)
	GetHourOfDay(days int) ([]models.HourOfDay, error)
	GetDaysAtHour(hour int) ([]models.DayAtHour, error)
}

// Monitors lists the running monitors.
type Monitors interface {
	Snapshots() []monitor.Snapshot
}

// Server handles web requests
type Server struct {
	store    Store
	monitors Monitors
	book     *history.Book
	port     int
	log      *slog.Logger
	srv      *http.Server
}

// New creates a new web server. store, monitors and book may be nil; the
// endpoints that need them then answer 503.
func New(store Store, monitors Monitors, book *history.Book, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		monitors: monitors,
		book:     book,
		port:     port,
		log:      logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/outages", s.handleOutages)
	mux.HandleFunc("GET /api/hourly", s.handleHourOfDay)
	mux.HandleFunc("GET /api/hourly/{hour}", s.handleDaysAtHour)
	mux.HandleFunc("GET /api/monitors", s.handleMonitors)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	staticFS, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServer(http.FS(staticFS)))

	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("web server starting", "port", s.port)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
