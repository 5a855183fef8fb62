package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReplaceByEmailPreservesID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.Save(ctx, Account{Vendor: "kaku", Email: "reader@example.com", Payload: []byte("v1")})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := store.Save(ctx, Account{Vendor: "kaku", Email: "reader@example.com", Payload: []byte("v2")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-authenticating with the same email must keep the original ID")
	assert.Equal(t, []byte("v2"), second.Payload)

	all, err := store.List(ctx, "kaku")
	require.NoError(t, err)
	assert.Len(t, all, 1, "the old record must be replaced, not duplicated")
}

func TestMemoryStoreDistinctEmailsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.Save(ctx, Account{Vendor: "kaku", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := store.Save(ctx, Account{Vendor: "kaku", Email: "b@example.com"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSelectSingleAmbiguous(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Save(ctx, Account{Vendor: "kaku", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = store.Save(ctx, Account{Vendor: "kaku", Email: "b@example.com"})
	require.NoError(t, err)

	_, err = SelectSingle(ctx, store, "kaku", "")
	require.Error(t, err)
}

func TestSelectSingleUnambiguousWhenOnlyOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	saved, err := store.Save(ctx, Account{Vendor: "kaku", Email: "a@example.com"})
	require.NoError(t, err)

	got, err := SelectSingle(ctx, store, "kaku", "")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	saved, err := store.Save(ctx, Account{
		Vendor:    "inkline",
		DeviceTag: "mobile",
		Email:     "reader@example.com",
		Payload:   []byte(`{"token":"abc"}`),
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Email, got.Email)
	assert.Equal(t, saved.Payload, got.Payload)
	assert.Equal(t, saved.DeviceTag, got.DeviceTag)
}

func TestFileStoreReplaceByEmailPreservesID(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	first, err := store.Save(ctx, Account{Vendor: "kaku", Email: "reader@example.com", Payload: []byte("v1")})
	require.NoError(t, err)

	second, err := store.Save(ctx, Account{Vendor: "kaku", Email: "reader@example.com", Payload: []byte("v2")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	all, err := store.List(ctx, "kaku")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []byte("v2"), all[0].Payload)
}

func TestWireRoundTrip(t *testing.T) {
	acc := Account{
		ID:        NewID(),
		Vendor:    "kaku",
		DeviceTag: "web",
		Email:     "reader@example.com",
		Payload:   []byte(`{"session":"xyz"}`),
	}

	encoded := acc.MarshalWire()

	var decoded Account
	require.NoError(t, decoded.UnmarshalWire(encoded))

	assert.Equal(t, acc.ID, decoded.ID)
	assert.Equal(t, acc.Vendor, decoded.Vendor)
	assert.Equal(t, acc.DeviceTag, decoded.DeviceTag)
	assert.Equal(t, acc.Email, decoded.Email)
	assert.Equal(t, acc.Payload, decoded.Payload)
}
