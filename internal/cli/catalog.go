package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pingwatch/internal/catalog"
	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/ping"
)

// catalogCmd groups the catalog subcommands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage named targets",
	Long: `List, add, remove and look up named targets. Names can be used
wherever a target is expected.

Examples:
  pingwatch catalog list
  pingwatch catalog add "Office Router" 10.0.0.1
  pingwatch catalog remove "Office Router"`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTARGET")
		for _, e := range cat.List() {
			fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Target)
		}
		return w.Flush()
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Add a named target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ping.ValidateTarget(args[1]); err != nil {
			return err
		}
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		added, err := cat.Add(args[0], args[1])
		if err != nil {
			return err
		}
		if !added {
			return pwerrors.New(pwerrors.ErrCatalog, fmt.Sprintf("%q is already in the catalog", args[0]),
				"remove it first or pick another name")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s -> %s\n", args[0], args[1])
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		removed, err := cat.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return pwerrors.New(pwerrors.ErrCatalog, fmt.Sprintf("%q is not in the catalog", args[0]), "")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the target stored under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		target, ok := cat.Lookup(args[0])
		if !ok {
			return pwerrors.New(pwerrors.ErrCatalog, fmt.Sprintf("%q is not in the catalog", args[0]), "")
		}
		fmt.Fprintln(cmd.OutOrStdout(), target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogAddCmd, catalogRemoveCmd, catalogGetCmd)
}

func openCatalog() (*catalog.Catalog, error) {
	return catalog.Open(cfg.CatalogFile, setupLogging(os.Stderr))
}
