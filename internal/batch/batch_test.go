package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangavault/internal/planner"
	verrors "mangavault/pkg/errors"
)

type fakeClaimer struct {
	pagesByID map[string][]string
	errByID   map[string]error
	calls     []string
}

func (f *fakeClaimer) ClaimChapter(_ context.Context, item planner.Item, _ planner.Plan) ([]string, error) {
	f.calls = append(f.calls, item.ID)
	if err, ok := f.errByID[item.ID]; ok {
		return nil, err
	}
	return f.pagesByID[item.ID], nil
}

func TestRunClaimsPurchasableItemsAndIsolatesFailures(t *testing.T) {
	claimer := &fakeClaimer{
		pagesByID: map[string][]string{
			"ch1": {"page1.png", "page2.png"},
			"ch3": {"page1.png"},
		},
		errByID: map[string]error{},
	}

	items := []planner.Item{
		{ID: "ch1", Price: 10},
		{ID: "ch2", Price: 1000}, // insufficient balance
		{ID: "ch3", Price: 10},
	}

	summary, err := Run(context.Background(), Deps{Claimer: claimer, Pace: time.Millisecond}, items, planner.Balance{Bonus: 20})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ClaimedTotal)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "ch2", summary.Failed[0].ItemID)
	assert.Equal(t, "Insufficient point balance", summary.Failed[0].Reason)
	assert.Equal(t, []string{"ch1", "ch3"}, claimer.calls, "ch2 must never reach the claimer")
}

func TestRunRecordsEmptyPagesAsFailedWhenClaiming(t *testing.T) {
	claimer := &fakeClaimer{pagesByID: map[string][]string{"ch1": {}}}

	items := []planner.Item{{ID: "ch1", Price: 0}}

	summary, err := Run(context.Background(), Deps{Claimer: claimer, Pace: time.Millisecond}, items, planner.Balance{})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ClaimedTotal)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Failed when claiming", summary.Failed[0].Reason)
}

func TestRunContinuesPastRecoverableVendorErrors(t *testing.T) {
	claimer := &fakeClaimer{
		pagesByID: map[string][]string{"ch2": {"page1.png"}},
		errByID:   map[string]error{"ch1": verrors.ErrTransport.Wrap(errors.New("dial tcp: timeout"))},
	}

	items := []planner.Item{{ID: "ch1", Price: 0}, {ID: "ch2", Price: 0}}

	summary, err := Run(context.Background(), Deps{Claimer: claimer, Pace: time.Millisecond}, items, planner.Balance{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ClaimedTotal)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed[0].Reason, "timeout")
}

func TestRunAbortsOnProgrammerError(t *testing.T) {
	claimer := &fakeClaimer{
		errByID: map[string]error{"ch1": verrors.ErrAmbiguousRequestBody},
	}

	items := []planner.Item{{ID: "ch1", Price: 0}, {ID: "ch2", Price: 0}}

	summary, err := Run(context.Background(), Deps{Claimer: claimer, Pace: time.Millisecond}, items, planner.Balance{})
	require.Error(t, err)
	assert.Equal(t, []string{"ch1"}, claimer.calls, "a programmer error must abort the rest of the batch")
	assert.Equal(t, 0, summary.ClaimedTotal)
}

func TestRunRejectsEmptyItemList(t *testing.T) {
	_, err := Run(context.Background(), Deps{Claimer: &fakeClaimer{}}, nil, planner.Balance{})
	require.Error(t, err)
}

type fakeSink struct {
	calls []string
	err   error
}

func (f *fakeSink) RecordAttempt(_ context.Context, itemID string, _ bool, _ string, _ uint64) error {
	f.calls = append(f.calls, itemID)
	return f.err
}

func TestFanoutSinkRecordsToEverySink(t *testing.T) {
	a, b := &fakeSink{}, &fakeSink{}
	fanout := FanoutSink{a, b}

	err := fanout.RecordAttempt(context.Background(), "ch1", true, "", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"ch1"}, a.calls)
	assert.Equal(t, []string{"ch1"}, b.calls)
}

func TestFanoutSinkSkipsNilSinksAndReturnsFirstError(t *testing.T) {
	ok := &fakeSink{}
	failing := &fakeSink{err: errors.New("insert failed")}
	fanout := FanoutSink{nil, ok, failing}

	err := fanout.RecordAttempt(context.Background(), "ch1", true, "", 10)
	require.Error(t, err)
	assert.Equal(t, []string{"ch1"}, ok.calls, "a nil sink must not stop the rest from being recorded")
}
