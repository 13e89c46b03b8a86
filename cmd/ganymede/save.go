package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/evidence"
)

var saveFlags struct {
	id          string
	bundleType  string
	payload     string
	payloadFile string
	createdAt   string
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save an evidence bundle",
	Long: `Save an evidence bundle as a durable JSON record.

The payload must be valid JSON, supplied inline with --payload or from
a file with --payload-file ("-" reads standard input). When no --id is
given a UUID is generated; saving with an existing id replaces that
record atomically.

Examples:
  # Inline payload, generated id
  ganymede save --type review --payload '{"verdict":"approved"}'

  # Explicit id, payload from a file
  ganymede save --type test --id run-42 --payload-file results.json

  # Payload from stdin
  cat diff.json | ganymede save --type diff --payload-file -`,
	RunE: saveBundle,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringVar(&saveFlags.id, "id", "", "record identifier (generated when empty)")
	saveCmd.Flags().StringVarP(&saveFlags.bundleType, "type", "t", "", "bundle type: review, test, diff, approval, note")
	saveCmd.Flags().StringVar(&saveFlags.payload, "payload", "", "inline JSON payload")
	saveCmd.Flags().StringVar(&saveFlags.payloadFile, "payload-file", "", "path to JSON payload file (\"-\" for stdin)")
	saveCmd.Flags().StringVar(&saveFlags.createdAt, "created-at", "", "creation timestamp (RFC3339, defaults to now)")
	_ = saveCmd.MarkFlagRequired("type")
}

func saveBundle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	raw, err := readPayload()
	if err != nil {
		return cli.NewCommandError("save", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cli.NewCommandError("save", fmt.Errorf("payload is not valid JSON: %w", err))
	}

	bundle := &evidence.Bundle{
		ID:        saveFlags.id,
		Type:      evidence.BundleType(saveFlags.bundleType),
		Payload:   payload,
		CreatedAt: saveFlags.createdAt,
	}

	st := newStore(cfg, nil)
	record, err := st.Save(context.Background(), bundle)
	if err != nil {
		return cli.NewCommandError("save", err)
	}
	if record == nil {
		fmt.Println("evidence store is disabled; nothing saved")
		return nil
	}

	fmt.Printf("saved %s (%s) as %s\n", record.ID, record.Type, record.Filename)
	return nil
}

// readPayload resolves the payload from the --payload and
// --payload-file flags, which are mutually exclusive.
func readPayload() ([]byte, error) {
	switch {
	case saveFlags.payload != "" && saveFlags.payloadFile != "":
		return nil, fmt.Errorf("--payload and --payload-file are mutually exclusive")
	case saveFlags.payload != "":
		return []byte(saveFlags.payload), nil
	case saveFlags.payloadFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return data, nil
	case saveFlags.payloadFile != "":
		data, err := os.ReadFile(saveFlags.payloadFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("either --payload or --payload-file is required")
	}
}
