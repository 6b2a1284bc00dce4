package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors the two tables the dashboard reads. Timestamps on events are
// kept as the ISO-8601 text the ingestion pipeline writes; lexical order
// matches chronological order for the UTC form it uses.
const schema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	tracking_id TEXT NOT NULL,
	event_uuid  TEXT NOT NULL,
	"timestamp" TEXT NOT NULL,
	brand       TEXT NOT NULL DEFAULT '',
	link_uuid   TEXT NOT NULL DEFAULT '',
	event_type  TEXT NOT NULL DEFAULT '',
	visitor_ip  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	country     TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	region      TEXT NOT NULL DEFAULT '',
	payload     JSONB NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (tracking_id, "timestamp", event_uuid)
);
CREATE INDEX IF NOT EXISTS analytics_events_timestamp_idx ON analytics_events ("timestamp" DESC);
CREATE INDEX IF NOT EXISTS analytics_events_brand_timestamp_idx ON analytics_events (brand, "timestamp" DESC);
CREATE INDEX IF NOT EXISTS analytics_events_link_timestamp_idx ON analytics_events (link_uuid, "timestamp" DESC);

CREATE TABLE IF NOT EXISTS brand_links (
	brand       TEXT NOT NULL,
	uuid        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by  TEXT NOT NULL DEFAULT '',
	real_url    TEXT NOT NULL DEFAULT '',
	short_url   TEXT NOT NULL DEFAULT '',
	link_status TEXT NOT NULL DEFAULT 'inactive',
	campaign_id TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT '',
	metadata    JSONB,
	PRIMARY KEY (brand, uuid)
);
`

// InitDB initializes the database connection pool
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
