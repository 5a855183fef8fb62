// Package analytics records one row per purchase attempt to ClickHouse,
// for usage analytics across accounts and vendors. This is supplemental
// to the batch loop, not load-bearing — a failure to record an attempt
// never fails the purchase itself.
package analytics

import (
	"context"
	"database/sql"
	"time"

	verrors "mangavault/pkg/errors"
)

// Sink writes purchase_attempts rows.
type Sink struct {
	db     *sql.DB
	vendor string
}

func New(db *sql.DB, vendor string) *Sink {
	return &Sink{db: db, vendor: vendor}
}

// RecordAttempt satisfies internal/batch.AnalyticsSink.
func (s *Sink) RecordAttempt(ctx context.Context, itemID string, success bool, reason string, priceMinor uint64) error {
	const q = `
		INSERT INTO purchase_attempts (vendor, item_id, success, reason, price_minor, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, q, s.vendor, itemID, success, reason, priceMinor, time.Now().UTC())
	if err != nil {
		return verrors.ErrInternal.Wrap(err)
	}
	return nil
}

// CreateTable idempotently creates the purchase_attempts table. Meant to
// be called once at startup rather than managed by golang-migrate, since
// ClickHouse's DDL dialect (MergeTree engines, no transactional DDL)
// doesn't fit golang-migrate's migration model the way Postgres does.
func CreateTable(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS purchase_attempts (
			vendor       String,
			item_id      String,
			success      UInt8,
			reason       String,
			price_minor  UInt64,
			attempted_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (vendor, attempted_at)
	`
	_, err := db.ExecContext(ctx, ddl)
	if err != nil {
		return verrors.ErrInternal.Wrap(err)
	}
	return nil
}
