package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangavault/internal/account"
)

func newTestAccount(t *testing.T, store account.Store, vendor, email string) account.Account {
	t.Helper()
	saved, err := store.Save(context.Background(), account.Account{Vendor: vendor, Email: email})
	require.NoError(t, err)
	return saved
}

func TestHandleHealthzReportsDisabledBackends(t *testing.T) {
	r := NewRouter(Deps{Store: account.NewMemoryStore()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backends"`)
}

func TestHandleListAndGetAccount(t *testing.T) {
	store := account.NewMemoryStore()
	acc := newTestAccount(t, store, "kaku", "reader@example.com")
	r := NewRouter(Deps{Store: store})

	listReq := httptest.NewRequest(http.MethodGet, "/accounts/kaku/", nil)
	listW := httptest.NewRecorder()
	r.ServeHTTP(listW, listReq)
	assert.Equal(t, http.StatusOK, listW.Code)
	assert.Contains(t, listW.Body.String(), acc.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/accounts/kaku/"+acc.ID, nil)
	getW := httptest.NewRecorder()
	r.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusOK, getW.Code)
	assert.Contains(t, getW.Body.String(), "reader@example.com")
}

func TestHandleDeleteAccount(t *testing.T) {
	store := account.NewMemoryStore()
	acc := newTestAccount(t, store, "kaku", "reader@example.com")
	r := NewRouter(Deps{Store: store})

	delReq := httptest.NewRequest(http.MethodDelete, "/accounts/kaku/"+acc.ID, nil)
	delW := httptest.NewRecorder()
	r.ServeHTTP(delW, delReq)
	assert.Equal(t, http.StatusOK, delW.Code)

	_, err := store.Get(context.Background(), acc.ID)
	assert.Error(t, err, "account must no longer exist after delete")
}

func TestHandleCatalogRejectsVendorMismatch(t *testing.T) {
	store := account.NewMemoryStore()
	acc := newTestAccount(t, store, "kaku", "reader@example.com")
	r := NewRouter(Deps{Store: store})

	req := httptest.NewRequest(http.MethodGet, "/catalog/inkline/"+acc.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vendor")
}
