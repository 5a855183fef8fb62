package account

import (
	"context"
	"sync"

	verrors "mangavault/pkg/errors"
)

// MemoryStore is a process-local Store backed by a guarded map, grounded
// on the teacher's in-memory repository pattern. Mainly useful for tests
// and for one-shot CLI invocations that don't need persistence.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Account)}
}

func (s *MemoryStore) List(_ context.Context, vendor string) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0)
	for _, acc := range s.byID {
		if acc.Vendor == vendor {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return Account{}, verrors.ErrAccountNotFound
	}
	return acc, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, vendor, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.byID {
		if acc.Vendor == vendor && acc.Email == email {
			found := acc
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Save(ctx context.Context, acc Account) (Account, error) {
	existing, err := s.FindByEmail(ctx, acc.Vendor, acc.Email)
	if err != nil {
		return Account{}, err
	}

	acc = PrepareForSave(acc, existing)

	s.mu.Lock()
	s.byID[acc.ID] = acc
	s.mu.Unlock()

	return acc, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return verrors.ErrAccountNotFound
	}
	delete(s.byID, id)
	return nil
}
