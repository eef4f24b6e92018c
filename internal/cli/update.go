package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// updateCmd re-validates and re-upgrades an existing configuration.json in
// place against the embedded jsonschema for metadata.CurrentVersion,
// writing the result back with a trailing newline. Grounded on
// metadata.Load/metadata.Upgrade (internal/metadata/validate.go,
// version.go), which already implement the v3->v4->v5 chain this command
// only needs to invoke and persist.
func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [DIR]",
		Short: "Upgrade an existing configuration.json to the latest version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runUpdate(dir)
		},
	}
}

func runUpdate(dir string) error {
	configPath := filepath.Join(dir, "configuration.json")

	sp, _ := pterm.DefaultSpinner.WithText(fmt.Sprintf("Upgrading %s...", configPath)).Start()

	raw, err := os.ReadFile(configPath)
	if err != nil {
		sp.Fail(fmt.Sprintf("failed to read %s: %s", configPath, err))
		return err
	}

	m, err := metadata.Load(raw)
	if err != nil {
		sp.Fail(fmt.Sprintf("failed to upgrade %s: %s", configPath, err))
		return err
	}

	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		sp.Fail(fmt.Sprintf("failed to encode upgraded configuration: %s", err))
		return err
	}
	encoded = append(encoded, '\n')

	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		sp.Fail(fmt.Sprintf("failed to write %s: %s", configPath, err))
		return err
	}

	sp.Success(fmt.Sprintf("upgraded %s to version %s", configPath, metadata.CurrentVersion))
	return nil
}
