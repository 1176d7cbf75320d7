package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"pingwatch/internal/catalog"
	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
	"pingwatch/internal/ping"
	"pingwatch/internal/report"
)

func newRegistry(log *slog.Logger) *monitor.Registry {
	prober := ping.NewProber(cfg, log)
	return monitor.NewRegistry(prober, cfg.MaxMonitors, monitor.LoopOptions{
		Interval:    cfg.Interval,
		StopTimeout: cfg.StopTimeout,
		Logger:      log,
	})
}

// openCatalogIfExists opens the catalog only when its file is already
// there, so one-shot commands do not seed a new file as a side effect.
func openCatalogIfExists(log *slog.Logger) *catalog.Catalog {
	if _, err := os.Stat(cfg.CatalogFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	cat, err := catalog.Open(cfg.CatalogFile, log)
	if err != nil {
		log.Warn("catalog unavailable", "error", err)
	}
	return cat
}

// resolveTargets turns args, or defaults when args is empty, into targets.
// Catalog names are replaced by their target; cat may be nil.
func resolveTargets(cat *catalog.Catalog, args, defaults []string) []string {
	if len(args) == 0 {
		args = defaults
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		t := strings.TrimSpace(arg)
		if t == "" {
			continue
		}
		if cat != nil {
			t = cat.Resolve(t)
		}
		out = append(out, t)
	}
	return out
}

// consoleObserver prints every result the way ping would.
func consoleObserver(w io.Writer) models.Observer {
	return models.ObserverFunc(func(r models.ProbeResult) {
		fmt.Fprintln(w, report.FormatLine(r))
	})
}
