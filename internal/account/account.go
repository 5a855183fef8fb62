// Package account implements the named-credential store: one record per
// logged-in vendor account, addressed by a 128-bit opaque ID, with
// replace-by-email-preserve-id semantics on re-authentication (logging
// into an already-known email keeps its original ID rather than minting a
// new one).
package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	verrors "mangavault/pkg/errors"
)

// Account is a single stored vendor credential. Payload carries the
// vendor-specific session shape (e.g. a cookiejar.Jar for a web vendor, a
// bearer token for a mobile one) as an opaque blob the store never
// inspects.
type Account struct {
	ID         string
	Vendor     string
	DeviceTag  string
	Email      string
	CreatedAt  time.Time
	TokenExpiry time.Time // zero value means "no known expiry"
	Payload    []byte
}

// NewID mints a fresh 128-bit opaque account identifier.
func NewID() string {
	return uuid.NewString()
}

// Store is implemented by every credential-store backend (file, memory,
// mongo).
type Store interface {
	List(ctx context.Context, vendor string) ([]Account, error)
	Get(ctx context.Context, id string) (Account, error)
	FindByEmail(ctx context.Context, vendor, email string) (*Account, error)
	// Save persists acc. If an existing record for the same vendor+email
	// is found and acc.ID is empty, the existing record's ID is reused
	// (replace-by-email-preserve-id) instead of minting a new one.
	Save(ctx context.Context, acc Account) (Account, error)
	Delete(ctx context.Context, id string) error
}

// PrepareForSave resolves replace-by-email-preserve-id semantics against
// existing, then fills in ID/CreatedAt as needed. Every Store backend
// calls this before actually writing the record, so the policy lives in
// one place instead of being re-implemented per backend.
func PrepareForSave(acc Account, existing *Account) Account {
	switch {
	case acc.ID != "":
		// caller already knows the ID (e.g. updating a known account) —
		// leave it alone.
	case existing != nil:
		acc.ID = existing.ID
		if acc.CreatedAt.IsZero() {
			acc.CreatedAt = existing.CreatedAt
		}
	default:
		acc.ID = NewID()
	}

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}

	return acc
}

// SelectSingle resolves an account reference for a vendor: if id is
// non-empty it is looked up directly; otherwise the vendor must have
// exactly one stored account, or the selection is ambiguous.
func SelectSingle(ctx context.Context, store Store, vendor, id string) (Account, error) {
	if id != "" {
		return store.Get(ctx, id)
	}

	accounts, err := store.List(ctx, vendor)
	if err != nil {
		return Account{}, err
	}

	switch len(accounts) {
	case 0:
		return Account{}, verrors.ErrAccountNotFound
	case 1:
		return accounts[0], nil
	default:
		return Account{}, verrors.ErrAccountAmbiguous.WithDetails("count", len(accounts))
	}
}
