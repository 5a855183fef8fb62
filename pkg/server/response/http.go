// Package response probes the health of mangavault's optional supporting
// backends (the Postgres purchase ledger, the ClickHouse analytics sink
// and the Redis catalog cache), for the status surface's /healthz
// endpoint. Every backend is optional: mangavault runs perfectly well
// against only a file-backed account store and no ledger/analytics/cache
// at all, so a nil client reports "disabled" rather than "down".
package response

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthCheck is the JSON body served at /healthz.
type HealthCheck struct {
	Version  string            `json:"version"`
	Backends map[string]string `json:"backends"`
}

// Backends bundles the optional clients Health probes. A nil field is
// reported "disabled"; a non-nil field that fails to ping is "down".
type Backends struct {
	Ledger    *pgxpool.Pool
	Analytics *sql.DB
	Cache     *redis.Client
}

// Health pings every configured backend and returns the aggregate report.
// It never returns an error: an unreachable backend is reflected in the
// report, not raised as a failure of the health check itself.
func Health(ctx context.Context, version string, b Backends) HealthCheck {
	return HealthCheck{
		Version: version,
		Backends: map[string]string{
			"ledger":    checkPostgres(ctx, b.Ledger),
			"analytics": checkSQL(ctx, b.Analytics),
			"cache":     checkRedis(ctx, b.Cache),
		},
	}
}

func checkPostgres(ctx context.Context, pool *pgxpool.Pool) string {
	if pool == nil {
		return "disabled"
	}
	if err := pool.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

func checkSQL(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return "disabled"
	}
	if err := db.PingContext(ctx); err != nil {
		return "down"
	}
	return "up"
}

func checkRedis(ctx context.Context, cli *redis.Client) string {
	if cli == nil {
		return "disabled"
	}
	if err := cli.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "up"
}
