package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/evidence/retention"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune expired and excess evidence records",
	Long: `Run a retention sweep immediately and report the result.

A sweep deletes corrupt records, records older than the configured age
budget, and the oldest records above the configured count budget. With
retention.archive_before_delete enabled, parsable records are written
to a JSON archive before deletion.

Examples:
  ganymede prune
  ganymede prune --config /etc/ganymede/ganymede.yaml`,
	RunE: pruneRecords,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func pruneRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	st := newStore(cfg, nil)
	pruner := retention.NewPruner(st, retentionConfig(cfg))

	result, err := pruner.RunOnce(cmd.Context())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	fmt.Printf("scanned:          %d\n", result.Scanned)
	fmt.Printf("corrupt:          %d\n", result.Corrupt)
	fmt.Printf("expired by age:   %d\n", result.ExpiredByAge)
	fmt.Printf("evicted by count: %d\n", result.EvictedByCount)
	fmt.Printf("deleted:          %d\n", result.Deleted)
	fmt.Printf("failed:           %d\n", result.Failed)
	return nil
}
