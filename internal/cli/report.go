package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pingwatch/internal/database"
	"pingwatch/internal/report"
)

var (
	reportHours int
	reportOut   string
)

// reportCmd renders charts and a text summary from the database
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate charts and a text report from stored results",
	Long: `Generate latency and availability charts, a failures-by-hour chart
and a text summary with outages for the last --hours hours.

Examples:
  pingwatch report
  pingwatch report --hours 168 --out evidence`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := setupLogging(os.Stderr)

		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		dir, err := report.NewGenerator(db, log).GenerateReport(reportOut, reportHours)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportHours, "hours", 24, "Hours of history to include")
	reportCmd.Flags().StringVar(&reportOut, "out", "reports", "Output directory")
}
