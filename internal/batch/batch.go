// Package batch implements the sequential purchase/download loop shared by
// every vendor: plan a chapter's cost, claim it from the vendor, and keep
// going even if one chapter fails — a single insufficient-balance or
// transport error should not abort an otherwise successful run of fifty
// chapters.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mangavault/internal/planner"
	verrors "mangavault/pkg/errors"
)

// defaultPace is the delay between successful claims, carried over from
// the vendor's own rate-limit tolerance: claiming too fast in sequence
// tends to fail server-side.
const defaultPace = 500 * time.Millisecond

// Claimer is implemented by a vendor client: given a planned purchase, it
// performs the claim and returns the resulting page URLs/identifiers.
type Claimer interface {
	ClaimChapter(ctx context.Context, item planner.Item, plan planner.Plan) ([]string, error)
}

// SessionPersister is implemented by a vendor client whose session balance
// must be saved back to the account store after every successful claim —
// a crash mid-batch should not re-spend currency already claimed.
type SessionPersister interface {
	PersistSession(ctx context.Context) error
}

// EventPublisher is implemented by the NATS JetStream adapter; it is
// optional (a nil EventPublisher is valid and Run skips publishing).
type EventPublisher interface {
	PublishEvent(ctx context.Context, subject, eventType string, data map[string]interface{}) error
}

// AnalyticsSink is implemented by the ClickHouse adapter; optional.
type AnalyticsSink interface {
	RecordAttempt(ctx context.Context, itemID string, success bool, reason string, priceMinor uint64) error
}

// FanoutSink broadcasts RecordAttempt to every sink in the slice, so the
// CLI can feed both the ClickHouse analytics sink and the Postgres ledger
// out of a single batch run. A sink error is logged by the caller's own
// record() wrapper like any other sink failure; one sink failing never
// stops the others from being tried.
type FanoutSink []AnalyticsSink

func (f FanoutSink) RecordAttempt(ctx context.Context, itemID string, success bool, reason string, priceMinor uint64) error {
	var firstErr error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.RecordAttempt(ctx, itemID, success, reason, priceMinor); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ItemResult records what happened to a single item in the batch.
type ItemResult struct {
	ItemID string
	Pages  []string
	Reason string // empty on success
}

// Summary is the outcome of an entire batch run.
type Summary struct {
	ClaimedTotal int
	Failed       []ItemResult
	TotalCost    decimal.Decimal
}

// Deps bundles the batch loop's collaborators. Claimer is required;
// everything else is optional (nil-safe).
type Deps struct {
	Claimer   Claimer
	Persister SessionPersister
	Events    EventPublisher
	EventsSubject string
	Analytics AnalyticsSink
	Metrics   *Metrics
	Vendor    string
	Logger    *zap.Logger
	Pace      time.Duration
	// CostDivisor converts a vendor's minor integer currency unit into a
	// displayable decimal (e.g. 100 if the vendor prices in cents).
	CostDivisor int64
}

// Run plans and claims items in order against balance, one at a time.
func Run(ctx context.Context, deps Deps, items []planner.Item, balance planner.Balance) (Summary, error) {
	if len(items) == 0 {
		return Summary{}, verrors.ErrNoChaptersSelected
	}

	pace := deps.Pace
	if pace <= 0 {
		pace = defaultPace
	}
	divisor := deps.CostDivisor
	if divisor <= 0 {
		divisor = 1
	}

	summary := Summary{TotalCost: decimal.Zero}

	for idx, item := range items {
		deps.logf("purchasing %d/%d: %s", idx+1, len(items), item.ID)
		deps.publish(ctx, "batch.progress", map[string]interface{}{
			"index": idx + 1,
			"total": len(items),
			"item_id": item.ID,
		})

		deps.bumpAttempt()

		plan := planner.PlanItem(item, balance)
		if !plan.Purchasable {
			summary.Failed = append(summary.Failed, ItemResult{ItemID: item.ID, Reason: "Insufficient point balance"})
			deps.record(ctx, item.ID, false, "Insufficient point balance", item.Price)
			deps.bumpFailed("insufficient_balance")
			continue
		}

		pages, err := deps.Claimer.ClaimChapter(ctx, item, plan)
		if err != nil {
			reason := fmt.Sprintf("Error: %v", err)
			summary.Failed = append(summary.Failed, ItemResult{ItemID: item.ID, Reason: reason})
			deps.record(ctx, item.ID, false, reason, item.Price)
			deps.bumpFailed("vendor_error")

			kind := verrors.GetKind(err)
			if kind != verrors.KindTransport && kind != verrors.KindApplication {
				return summary, err
			}
			continue
		}

		if len(pages) == 0 {
			summary.Failed = append(summary.Failed, ItemResult{ItemID: item.ID, Reason: "Failed when claiming"})
			deps.record(ctx, item.ID, false, "Failed when claiming", item.Price)
			deps.bumpFailed("empty_pages")
			continue
		}

		balance = plan.Remaining
		summary.ClaimedTotal++
		deps.bumpClaimed()
		summary.TotalCost = summary.TotalCost.Add(decimal.New(int64(item.Price), 0).Div(decimal.New(divisor, 0)))

		if deps.Persister != nil {
			if err := deps.Persister.PersistSession(ctx); err != nil {
				deps.logf("could not persist session after claiming %s: %v", item.ID, err)
			}
		}

		deps.record(ctx, item.ID, true, "", item.Price)

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		case <-time.After(pace):
		}
	}

	deps.publish(ctx, "batch.summary", map[string]interface{}{
		"claimed_total": summary.ClaimedTotal,
		"failed_total":  len(summary.Failed),
	})

	return summary, nil
}

func (d Deps) logf(format string, args ...interface{}) {
	if d.Logger != nil {
		d.Logger.Sugar().Infof(format, args...)
	}
}

func (d Deps) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if d.Events == nil {
		return
	}
	subject := d.EventsSubject
	if subject == "" {
		subject = "mangavault.batch"
	}
	if err := d.Events.PublishEvent(ctx, subject, eventType, data); err != nil {
		d.logf("failed to publish %s event: %v", eventType, err)
	}
}

func (d Deps) bumpAttempt() {
	if d.Metrics == nil {
		return
	}
	d.Metrics.Attempts.WithLabelValues(d.Vendor).Inc()
}

func (d Deps) bumpClaimed() {
	if d.Metrics == nil {
		return
	}
	d.Metrics.Claimed.Inc()
}

func (d Deps) bumpFailed(reason string) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.Failed.WithLabelValues(reason).Inc()
}

func (d Deps) record(ctx context.Context, itemID string, success bool, reason string, price uint64) {
	if d.Analytics == nil {
		return
	}
	if err := d.Analytics.RecordAttempt(ctx, itemID, success, reason, price); err != nil {
		d.logf("failed to record analytics for %s: %v", itemID, err)
	}
}
