package server

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Connect opens a pgxpool.Pool against connString, retrying the initial
// connect with exponential backoff for up to timeout via
// cenkalti/backoff/v4's ExponentialBackOff. Backoff wraps only the initial
// connect, never individual statement execution, since a mid-flight
// failure must surface to the caller rather than retry silently.
func Connect(ctx context.Context, connString string, maxConns int32, timeout time.Duration, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("server: parsing connection string: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	var pool *pgxpool.Pool

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = timeout

	operation := func() error {
		p, err := pgxpool.ConnectConfig(ctx, poolConfig)
		if err != nil {
			log.Warnf("server: database connect attempt failed: %s", err)
			return err
		}
		pool = p
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("server: connecting to database: %w", err)
	}
	return pool, nil
}

// ExecStatements runs a sequence of parameterized statements over one pooled
// connection, in order, discarding any result rows and stopping at the
// first error. Used for ExecutionPlan.Pre (e.g.
// `BEGIN ISOLATION LEVEL ...`) and .Post (`COMMIT`), where the caller only
// needs completion, not a result set.
func ExecStatements(ctx context.Context, conn *pgxpool.Conn, statements []statement) error {
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
			return fmt.Errorf("server: executing statement: %w", err)
		}
	}
	return nil
}
