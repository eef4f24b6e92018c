// Package cli wires the ndc-postgres connector's cobra command surface
// (spec §4.15): initialize, update, serve.
package cli

import (
	"fmt"
	"os"

	"github.com/hasura/ndc-postgres-go/internal/obs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set via -ldflags at build time; empty unless overridden.
var version string

var log *zap.SugaredLogger

// Execute builds and runs the root command, the one entry point
// cmd/ndc-postgres/main.go calls.
func Execute() {
	log = obs.NewLogger(false)

	cobra.EnableCommandSorting = false
	root := &cobra.Command{
		Use:   "ndc-postgres",
		Short: "A Native Data Connector for PostgreSQL",
		Long:  buildDetails(),
	}

	root.AddCommand(initializeCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("%s", err)
	}
}

func buildDetails() string {
	v := version
	if v == "" {
		v = "not-set"
	}
	return fmt.Sprintf("ndc-postgres %s", v)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the connector version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, buildDetails())
		},
	}
}
