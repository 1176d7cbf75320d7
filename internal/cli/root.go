// Package cli wires the pingwatch components into cobra commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pingwatch/internal/config"
	"pingwatch/internal/logger"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pingwatch",
	Short: "Watch reachability and latency of a few hosts",
	Long: `pingwatch sends one ICMP echo request per target at a fixed interval
and keeps the results: on screen, in a CSV log and in a sqlite database.

Targets are IP addresses, host names or names from the target catalog.

Examples:
  pingwatch watch 8.8.8.8 "Cloudflare DNS"
  pingwatch run --interval 10s 192.168.1.1 1.1.1.1
  pingwatch probe example.com
  pingwatch report --hours 48`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.NewViper()
		if err := config.Bind(cmd.Flags(), v); err != nil {
			return err
		}
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default pingwatch.yaml in . or $HOME/.config/pingwatch)")
	config.AddFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs the configured slog handler writing to out.
func setupLogging(out io.Writer) *slog.Logger {
	return logger.Setup(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}
