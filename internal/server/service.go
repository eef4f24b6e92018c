// Package server hosts the connector's NDC HTTP surface: request decoding,
// plan caching, pgx execution, and response encoding. internal/translate
// stays a pure function of catalog and request; everything with a side
// effect (the database, the config file, the wire protocol) lives here.
package server

import (
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Service holds everything one running connector instance needs to serve
// requests: the pooled database connection, the current catalog (swapped
// atomically by the configuration watcher), the plan cache, and the
// logger. The catalog lives behind an atomic pointer so request handlers
// never race a concurrent hot reload.
type Service struct {
	Pool           *pgxpool.Pool
	Config         *Config
	Cache          *planCache
	Log            *zap.SugaredLogger
	validate       *validator.Validate
	metadata       atomic.Pointer[metadata.Metadata]
}

// NewService wires a Service from an already-loaded catalog and config.
// Connect and NewPlanCache are called by the caller (internal/cli's serve
// command) so tests can construct a Service around a fake pool without
// needing a real database.
func NewService(pool *pgxpool.Pool, cfg *Config, m *metadata.Metadata, cache *planCache, log *zap.SugaredLogger) *Service {
	s := &Service{Pool: pool, Config: cfg, Cache: cache, Log: log, validate: validator.New()}
	s.metadata.Store(m)
	return s
}

// Metadata returns the currently active catalog snapshot.
func (s *Service) Metadata() *metadata.Metadata { return s.metadata.Load() }

// SetMetadata atomically replaces the active catalog, called by the
// configuration file watcher after a successful reload.
func (s *Service) SetMetadata(m *metadata.Metadata) { s.metadata.Store(m) }
