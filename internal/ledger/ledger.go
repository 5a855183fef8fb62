// Package ledger durably records executed purchase plans in Postgres, so
// a multi-run history of what was claimed survives past any one process's
// lifetime — the account store and the batch loop are both in-memory or
// file-local per account, but an operator running mangavault as a batch
// worker wants cross-run history.
package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	verrors "mangavault/pkg/errors"
)

// Entry is one executed purchase plan.
type Entry struct {
	ID         int64
	AccountID  string
	Vendor     string
	ItemID     string
	PriceMinor uint64
	Success    bool
	Reason     string
	ClaimedAt  time.Time
}

// Ledger is a thin pgx-backed repository over the purchase_ledger table.
type Ledger struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Record inserts one ledger entry.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	const q = `
		INSERT INTO purchase_ledger (account_id, vendor, item_id, price_minor, success, reason, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := l.pool.Exec(ctx, q, e.AccountID, e.Vendor, e.ItemID, e.PriceMinor, e.Success, e.Reason, e.ClaimedAt)
	if err != nil {
		return verrors.ErrInternal.Wrap(err)
	}
	return nil
}

// AccountSink adapts a Ledger to internal/batch.AnalyticsSink for one
// purchase run: accountID and vendor are fixed for the whole batch, so
// only the per-item fields RecordAttempt receives need to vary.
type AccountSink struct {
	ledger    *Ledger
	accountID string
	vendor    string
}

func NewAccountSink(l *Ledger, accountID, vendor string) AccountSink {
	return AccountSink{ledger: l, accountID: accountID, vendor: vendor}
}

// RecordAttempt satisfies internal/batch.AnalyticsSink. A zero-value
// AccountSink (no Ledger configured) is a no-op.
func (s AccountSink) RecordAttempt(ctx context.Context, itemID string, success bool, reason string, priceMinor uint64) error {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Record(ctx, Entry{
		AccountID:  s.accountID,
		Vendor:     s.vendor,
		ItemID:     itemID,
		PriceMinor: priceMinor,
		Success:    success,
		Reason:     reason,
		ClaimedAt:  time.Now().UTC(),
	})
}

// History returns every ledger entry for accountID, most recent first.
func (l *Ledger) History(ctx context.Context, accountID string) ([]Entry, error) {
	const q = `
		SELECT id, account_id, vendor, item_id, price_minor, success, reason, claimed_at
		FROM purchase_ledger
		WHERE account_id = $1
		ORDER BY claimed_at DESC
	`
	rows, err := l.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, verrors.ErrInternal.Wrap(err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Vendor, &e.ItemID, &e.PriceMinor, &e.Success, &e.Reason, &e.ClaimedAt); err != nil {
			return nil, verrors.ErrInternal.Wrap(err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
