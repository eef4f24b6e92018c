package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// directoryIsNotEmptyExitCode is spec §4.15's exit code 2 for `initialize`
// targeting a non-empty directory.
const directoryIsNotEmptyExitCode = 2

// minimalConfiguration is the smallest document internal/metadata's
// embedded schema accepts: version and an empty table map are the schema's
// only `required` fields (internal/metadata/schema.json).
const minimalConfiguration = "{\n  \"version\": \"5\",\n  \"tables\": {}\n}\n"

type connectorMetadata struct {
	PackagingDefinition struct {
		Type    string `yaml:"type"`
		Version string `yaml:"version"`
	} `yaml:"packagingDefinition"`
	SupportedEnvironmentVariables []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"supportedEnvironmentVariables"`
	CommandsConfiguration struct {
		Update string `yaml:"update"`
	} `yaml:"commandsConfiguration"`
}

func defaultConnectorMetadata() connectorMetadata {
	var m connectorMetadata
	m.PackagingDefinition.Type = "PrebuiltDockerImage"
	m.PackagingDefinition.Version = "1"
	m.SupportedEnvironmentVariables = append(m.SupportedEnvironmentVariables, struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	}{Name: "CONNECTION_URI", Description: "The PostgreSQL connection string"})
	m.CommandsConfiguration.Update = "ndc-postgres update"
	return m
}

// initializeCmd scaffolds configuration.json and
// .hasura-connector/connector-metadata.yaml in an empty directory.
// Introspecting a live database (--with-metadata) is out of scope per
// spec.md §1, so --with-metadata is accepted and ignored with a warning
// rather than silently doing something else.
func initializeCmd() *cobra.Command {
	var withMetadata bool

	c := &cobra.Command{
		Use:   "initialize [DIR]",
		Short: "Scaffold a new connector configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if withMetadata {
				pterm.Warning.Println("--with-metadata is not supported; writing a minimal configuration skeleton instead")
			}
			return runInitialize(dir)
		},
	}
	c.Flags().BoolVar(&withMetadata, "with-metadata", false, "introspect a live database (unsupported)")
	return c
}

func runInitialize(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		} else {
			return err
		}
	} else if len(entries) > 0 {
		pterm.Error.Println("directory is not empty")
		os.Exit(directoryIsNotEmptyExitCode)
	}

	sp, _ := pterm.DefaultSpinner.WithText("Scaffolding configuration...").Start()

	configPath := filepath.Join(dir, "configuration.json")
	if err := os.WriteFile(configPath, []byte(minimalConfiguration), 0o644); err != nil {
		sp.Fail(fmt.Sprintf("failed to write %s: %s", configPath, err))
		return err
	}

	connectorDir := filepath.Join(dir, ".hasura-connector")
	if err := os.MkdirAll(connectorDir, 0o755); err != nil {
		sp.Fail(fmt.Sprintf("failed to create %s: %s", connectorDir, err))
		return err
	}

	metadataBytes, err := yaml.Marshal(defaultConnectorMetadata())
	if err != nil {
		sp.Fail(fmt.Sprintf("failed to encode connector metadata: %s", err))
		return err
	}
	metadataPath := filepath.Join(connectorDir, "connector-metadata.yaml")
	if err := os.WriteFile(metadataPath, metadataBytes, 0o644); err != nil {
		sp.Fail(fmt.Sprintf("failed to write %s: %s", metadataPath, err))
		return err
	}

	sp.Success(fmt.Sprintf("wrote %s and %s", configPath, metadataPath))
	return nil
}
