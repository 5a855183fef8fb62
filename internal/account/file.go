package account

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	verrors "mangavault/pkg/errors"
)

// FileStore persists one wire-encoded record per account under
// <root>/<vendor>/<id>.bin, matching the "one file per account" layout of
// the spec's on-disk account store. Writes go to a temp file first and are
// renamed into place, so a crash mid-write never leaves a half-written
// record behind.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) vendorDir(vendor string) string {
	return filepath.Join(s.root, vendor)
}

func (s *FileStore) path(vendor, id string) string {
	return filepath.Join(s.vendorDir(vendor), id+".bin")
}

func (s *FileStore) List(_ context.Context, vendor string) ([]Account, error) {
	entries, err := os.ReadDir(s.vendorDir(vendor))
	if os.IsNotExist(err) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, verrors.ErrInternal.Wrap(err)
	}

	out := make([]Account, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bin") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.vendorDir(vendor), entry.Name()))
		if err != nil {
			return nil, verrors.ErrInternal.Wrap(err)
		}
		var acc Account
		if err := acc.UnmarshalWire(data); err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Account, error) {
	vendors, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return Account{}, verrors.ErrAccountNotFound
	}
	if err != nil {
		return Account{}, verrors.ErrInternal.Wrap(err)
	}

	for _, v := range vendors {
		if !v.IsDir() {
			continue
		}
		p := s.path(v.Name(), id)
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Account{}, verrors.ErrInternal.Wrap(err)
		}
		var acc Account
		if err := acc.UnmarshalWire(data); err != nil {
			return Account{}, err
		}
		return acc, nil
	}

	return Account{}, verrors.ErrAccountNotFound
}

func (s *FileStore) FindByEmail(ctx context.Context, vendor, email string) (*Account, error) {
	accounts, err := s.List(ctx, vendor)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if acc.Email == email {
			found := acc
			return &found, nil
		}
	}
	return nil, nil
}

func (s *FileStore) Save(ctx context.Context, acc Account) (Account, error) {
	existing, err := s.FindByEmail(ctx, acc.Vendor, acc.Email)
	if err != nil {
		return Account{}, err
	}

	acc = PrepareForSave(acc, existing)

	dir := s.vendorDir(acc.Vendor)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Account{}, verrors.ErrInternal.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+acc.ID+"-*.tmp")
	if err != nil {
		return Account{}, verrors.ErrInternal.Wrap(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(acc.MarshalWire()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Account{}, verrors.ErrInternal.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Account{}, verrors.ErrInternal.Wrap(err)
	}

	if err := os.Rename(tmpName, s.path(acc.Vendor, acc.ID)); err != nil {
		os.Remove(tmpName)
		return Account{}, verrors.ErrInternal.Wrap(err)
	}

	return acc, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	vendors, err := os.ReadDir(s.root)
	if err != nil {
		return verrors.ErrAccountNotFound
	}
	for _, v := range vendors {
		p := s.path(v.Name(), id)
		if err := os.Remove(p); err == nil {
			return nil
		}
	}
	return verrors.ErrAccountNotFound
}
