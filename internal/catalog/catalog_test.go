package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFetchesOnceThenServesFromCache(t *testing.T) {
	calls := 0
	fetcher := func(_ context.Context, key string) ([]byte, error) {
		calls++
		return []byte("payload-for-" + key), nil
	}

	c := New(t.TempDir(), time.Minute, fetcher, nil)

	v1, err := c.Get(context.Background(), "kaku/title/1")
	require.NoError(t, err)
	assert.Equal(t, "payload-for-kaku/title/1", string(v1))

	v2, err := c.Get(context.Background(), "kaku/title/1")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls, "second Get must be served from cache, not refetched")
}

func TestGetSurvivesL1EvictionViaDisk(t *testing.T) {
	calls := 0
	fetcher := func(_ context.Context, key string) ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	}

	root := t.TempDir()
	c := New(root, time.Hour, fetcher, nil)

	_, err := c.Get(context.Background(), "kaku/title/1")
	require.NoError(t, err)

	// Simulate a new process (fresh L1/L2, same disk root).
	c2 := New(root, time.Hour, fetcher, nil)
	v, err := c2.Get(context.Background(), "kaku/title/1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(v))
	assert.Equal(t, 1, calls, "a fresh process must read the on-disk entry before refetching")
}

func TestGetLeavesStaleFileUntouchedOnFetchFailure(t *testing.T) {
	root := t.TempDir()

	okFetcher := func(_ context.Context, key string) ([]byte, error) {
		return []byte("first-version"), nil
	}
	c := New(root, time.Millisecond, okFetcher, nil)
	_, err := c.Get(context.Background(), "kaku/title/1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond) // force TTL expiry

	failFetcher := func(_ context.Context, key string) ([]byte, error) {
		return nil, errors.New("vendor unreachable")
	}
	c2 := New(root, time.Millisecond, failFetcher, nil)
	_, err = c2.Get(context.Background(), "kaku/title/1")
	require.Error(t, err, "a fetch failure must surface as an error, not silently serve stale data")

	stale, err := c2.GetStale("kaku/title/1")
	require.NoError(t, err)
	assert.Equal(t, "first-version", string(stale), "the stale file must still be readable on disk")
}
