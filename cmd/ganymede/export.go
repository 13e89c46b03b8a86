package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/evidence/export"
)

var exportFlags struct {
	format string
	output string
	pretty bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export evidence records",
	Long: `Export all parsable evidence records as JSON or CSV.

Examples:
  # Pretty-printed JSON to stdout
  ganymede export --pretty

  # CSV to a file
  ganymede export --format csv --output evidence.csv`,
	RunE: exportRecords,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "output format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportFlags.pretty, "pretty", false, "pretty-print JSON output")
}

func exportRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	var exporter export.Exporter
	switch exportFlags.format {
	case "json":
		exporter = export.NewJSONExporter(exportFlags.pretty)
	case "csv":
		exporter = export.NewCSVExporter(true)
	default:
		return cli.NewCommandError("export", fmt.Errorf("unknown format %q", exportFlags.format))
	}

	var out io.Writer = os.Stdout
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return cli.NewCommandError("export", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	st := newStore(cfg, nil)
	records := st.List(context.Background())

	if err := exporter.Export(cmd.Context(), records, out); err != nil {
		return cli.NewCommandError("export", err)
	}

	if exportFlags.output != "" {
		fmt.Printf("exported %d record(s) to %s\n", len(records), exportFlags.output)
	}
	return nil
}
