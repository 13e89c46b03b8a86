package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/evidence/export"
)

var listFlags struct {
	bundleType string
	limit      int
	format     string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted evidence records",
	Long: `List evidence records, newest first.

Unreadable or malformed files in the evidence directory are skipped,
so a listing always reflects every record that can still be parsed.

Examples:
  # All records as a table
  ganymede list

  # Only test results, at most ten
  ganymede list --type test --limit 10

  # Machine-readable output
  ganymede list --format json`,
	RunE: listRecords,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFlags.bundleType, "type", "t", "", "filter by bundle type")
	listCmd.Flags().IntVar(&listFlags.limit, "limit", 0, "max records (0 = all)")
	listCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format: text, json")
}

func listRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	st := newStore(cfg, nil)
	records := st.List(context.Background())

	if listFlags.bundleType != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Type == evidence.BundleType(listFlags.bundleType) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if listFlags.limit > 0 && len(records) > listFlags.limit {
		records = records[:listFlags.limit]
	}

	switch listFlags.format {
	case "json":
		exporter := export.NewJSONExporter(true)
		if err := exporter.Export(cmd.Context(), records, os.Stdout); err != nil {
			return cli.NewCommandError("list", err)
		}
		fmt.Println()
		return nil
	case "text":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tCREATED AT\tFILENAME")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Type, r.CreatedAt, r.Filename)
		}
		if err := w.Flush(); err != nil {
			return cli.NewCommandError("list", err)
		}
		fmt.Printf("\n%d record(s)\n", len(records))
		return nil
	default:
		return cli.NewCommandError("list", fmt.Errorf("unknown format %q", listFlags.format))
	}
}
