package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pingwatch/internal/catalog"
	"pingwatch/internal/csvlog"
	"pingwatch/internal/database"
	"pingwatch/internal/history"
	"pingwatch/internal/logger"
	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
	"pingwatch/internal/tui"
)

var (
	watchRecord bool
	watchOutDir string
)

// watchCmd opens the full-screen dashboard
var watchCmd = &cobra.Command{
	Use:   "watch [targets...]",
	Short: "Full-screen dashboard with one panel per target",
	Long: `Open the dashboard and start monitoring the given targets, or the
targets from the config file when none are given.

Keys: a add, p pause/resume, x remove, s save details, c catalog, q quit.

Examples:
  pingwatch watch
  pingwatch watch 8.8.8.8 "Google DNS"
  pingwatch watch --record --interval 2s 192.168.1.1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "Also store results in the sqlite database")
	watchCmd.Flags().StringVar(&watchOutDir, "out", ".", "Directory for saved details files")
}

func watchCommand(ctx context.Context, args []string) error {
	ring := logger.NewRing(200)
	log := setupLogging(ring)

	cat, err := catalog.Open(cfg.CatalogFile, log)
	if err != nil {
		log.Warn("catalog could not be saved", "error", err)
	}

	csv, err := csvlog.Open(cfg.LogFile, log)
	if err != nil {
		return err
	}
	sink := models.Observers{csv}

	if watchRecord {
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		sink = append(sink, database.NewRecorder(db, log))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := tui.New(tui.Options{
		Registry:  newRegistry(log),
		Queue:     monitor.NewQueue(monitor.DefaultQueueSize, log),
		Book:      history.NewBook(cfg.HistorySize),
		Catalog:   cat,
		Sink:      sink,
		Ring:      ring,
		OutputDir: watchOutDir,
		Logger:    log,
	})

	targets := args
	if len(targets) == 0 {
		targets = cfg.Targets
	}
	return app.Run(ctx, targets)
}
