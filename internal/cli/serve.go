package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/obs"
	"github.com/hasura/ndc-postgres-go/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP surface described by spec §4.14: a cobra command
// with flag-bound overrides, reading config via LoadConfig before opening
// the database.
func serveCmd() *cobra.Command {
	var port string
	var connectionURI string

	c := &cobra.Command{
		Use:   "serve [DIR]",
		Short: "Run the connector HTTP service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runServe(cmd.Context(), dir, port, connectionURI)
		},
	}
	c.Flags().StringVar(&port, "port", "", "override the configured host:port")
	c.Flags().StringVar(&connectionURI, "connection-uri", "", "override the configured connection URI")
	return c
}

func runServe(ctx context.Context, dir, portOverride, connectionURIOverride string) error {
	cfg, err := server.LoadConfig(dir)
	if err != nil {
		return err
	}
	if portOverride != "" {
		cfg.HostPort = portOverride
	}
	if connectionURIOverride != "" {
		cfg.ConnectionURI = connectionURIOverride
	}

	connectionURI, err := server.ResolveSecrets(cfg.ConnectionURI, os.LookupEnv)
	if err != nil {
		return err
	}

	logger := obs.NewLogger(cfg.Production)

	configPath := filepath.Join(cfg.ConfigurationPath, "configuration.json")
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	m, err := metadata.Load(raw)
	if err != nil {
		return err
	}

	pool, err := server.Connect(ctx, connectionURI, cfg.PoolMaxConns, cfg.ConnectTimeout, logger)
	if err != nil {
		return err
	}

	cache, err := server.NewPlanCache(cfg.PlanCacheSize)
	if err != nil {
		return err
	}

	svc := server.NewService(pool, cfg, &m, cache, logger)

	if err := server.WatchConfiguration(cfg.ConfigurationPath, cfg.Production, logger, svc.SetMetadata); err != nil {
		logger.Warnf("server: configuration watcher disabled: %s", err)
	}

	return svc.Serve(ctx)
}
