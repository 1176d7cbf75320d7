package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pingwatch/internal/csvlog"
	"pingwatch/internal/database"
	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/history"
	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
	"pingwatch/internal/web"
)

const shutdownTimeout = 5 * time.Second

var (
	runNoWeb bool
	runQuiet bool
)

// runCmd monitors without a UI
var runCmd = &cobra.Command{
	Use:   "run [targets...]",
	Short: "Monitor targets headless, with an optional web API",
	Long: `Monitor the given targets, or the configured ones, until interrupted.

Every result is printed, appended to the CSV log and stored in the sqlite
database. The web API serves recent results, statistics and outages.

Examples:
  pingwatch run 8.8.8.8 1.1.1.1
  pingwatch run --port 9090 "Default Gateway"
  pingwatch run --no-web --quiet 192.168.1.1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNoWeb, "no-web", false, "Do not start the web API")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Do not print results")
}

func runCommand(ctx context.Context, cmd *cobra.Command, args []string) error {
	log := setupLogging(os.Stderr)

	targets := resolveTargets(openCatalogIfExists(log), args, cfg.Targets)
	if len(targets) == 0 {
		return pwerrors.New(pwerrors.ErrConfig, "no targets to monitor",
			"pass targets as arguments or list them under targets in pingwatch.yaml")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	csv, err := csvlog.Open(cfg.LogFile, log)
	if err != nil {
		return err
	}

	book := history.NewBook(cfg.HistorySize)
	sink := models.Observers{csv, book, database.NewRecorder(db, log)}
	if !runQuiet {
		sink = append(sink, consoleObserver(cmd.OutOrStdout()))
	}

	registry := newRegistry(log)
	mon := monitor.New(registry, monitor.NewQueue(monitor.DefaultQueueSize, log), sink, db, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(targets); err != nil {
		mon.Wait()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if !runNoWeb {
		srv := web.New(db, registry, book, cfg.Port, log)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		log.Info("web API listening", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	}

	g.Go(func() error {
		<-gctx.Done()
		mon.Stop()
		mon.Wait()
		return nil
	})

	return g.Wait()
}
