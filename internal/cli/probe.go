package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/ping"
	"pingwatch/internal/report"
)

var probeCount int

// probeCmd sends a few echo requests and prints the results
var probeCmd = &cobra.Command{
	Use:   "probe <target>",
	Short: "Probe a target once, or --count times",
	Long: `Send echo requests to a single target, one per interval, and print
each result. The command fails when no reply arrives.

Examples:
  pingwatch probe 8.8.8.8
  pingwatch probe --count 5 --interval 1s "Google DNS"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return probeCommand(cmd.Context(), cmd.OutOrStdout(), args[0], probeCount)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVarP(&probeCount, "count", "n", 1, "Number of echo requests")
}

func probeCommand(ctx context.Context, out io.Writer, arg string, count int) error {
	log := setupLogging(os.Stderr)

	target := arg
	if cat := openCatalogIfExists(log); cat != nil {
		target = cat.Resolve(arg)
	}

	prober := ping.NewProber(cfg, log)
	replies := 0
	for i := 0; i < max(count, 1); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
		}
		r := prober.Probe(ctx, target)
		fmt.Fprintln(out, report.FormatLine(r))
		if r.Succeeded() {
			replies++
		}
	}

	if replies == 0 {
		return pwerrors.New(pwerrors.ErrTarget, fmt.Sprintf("no reply from %s", target), "")
	}
	return nil
}
