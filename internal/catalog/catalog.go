// Package catalog caches a vendor's title/chapter listings so repeated
// CLI invocations don't refetch them on every run. Three layers, checked
// in order: an in-process go-cache L1, an optional shared Redis L2, and an
// on-disk file as the durable fallback. A fetch failure never touches the
// on-disk file — the stale copy is left in place and the error is
// surfaced to the caller, who may retry.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/encoding/protowire"

	verrors "mangavault/pkg/errors"
)

// Fetcher retrieves a fresh copy of a vendor's catalog, named key (e.g.
// "kaku/title/123"). It is called only on a cache miss or a caller-forced
// refresh.
type Fetcher func(ctx context.Context, key string) ([]byte, error)

// Cache is the three-layer read-through cache. Redis is optional: a
// nil client just skips the L2 lookup.
type Cache struct {
	l1      *cache.Cache
	l2      *redis.Client
	root    string
	ttl     time.Duration
	fetcher Fetcher
}

// Entry is the on-disk wire record: the cached payload plus the unix
// timestamp it was fetched at, so TTL expiry survives process restarts.
type Entry struct {
	FetchedAt time.Time
	Payload   []byte
}

const (
	fieldFetchedAt = protowire.Number(1)
	fieldPayload   = protowire.Number(2)
)

func (e Entry) marshalWire() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldFetchedAt, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.FetchedAt.Unix()))
	buf = protowire.AppendTag(buf, fieldPayload, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.Payload)
	return buf
}

func unmarshalWireEntry(data []byte) (Entry, error) {
	var e Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Entry{}, verrors.ErrResponseParse
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return Entry{}, verrors.ErrResponseParse
			}
			data = data[m:]
			if num == fieldFetchedAt {
				e.FetchedAt = time.Unix(int64(v), 0).UTC()
			}
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return Entry{}, verrors.ErrResponseParse
			}
			data = data[m:]
			if num == fieldPayload {
				e.Payload = append([]byte(nil), v...)
			}
		default:
			return Entry{}, verrors.ErrResponseParse
		}
	}
	return e, nil
}

// New builds a Cache rooted at root (the on-disk layer), with ttl as the
// freshness window and fetcher as the miss handler. l2 may be nil.
func New(root string, ttl time.Duration, fetcher Fetcher, l2 *redis.Client) *Cache {
	return &Cache{
		l1:      cache.New(ttl, ttl*2),
		l2:      l2,
		root:    root,
		ttl:     ttl,
		fetcher: fetcher,
	}
}

func (c *Cache) diskPath(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(key)+".bin")
}

// Get returns key's payload, consulting L1, then L2, then the on-disk
// file, refetching only if every layer missed or was stale.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.l1.Get(key); ok {
		return v.([]byte), nil
	}

	if c.l2 != nil {
		if v, err := c.l2.Get(ctx, key).Bytes(); err == nil {
			c.l1.SetDefault(key, v)
			return v, nil
		}
	}

	if entry, err := c.readDisk(key); err == nil && time.Since(entry.FetchedAt) < c.ttl {
		c.l1.SetDefault(key, entry.Payload)
		c.writeL2(ctx, key, entry.Payload)
		return entry.Payload, nil
	}

	payload, err := c.fetcher(ctx, key)
	if err != nil {
		// Stale-cache-on-fetch-failure: leave whatever is on disk
		// untouched and surface the error. A caller that wants the stale
		// data anyway should call GetStale.
		return nil, verrors.ErrCatalogFetch.Wrap(err)
	}

	if err := c.writeDisk(key, payload); err != nil {
		return payload, err
	}

	c.l1.SetDefault(key, payload)
	c.writeL2(ctx, key, payload)

	return payload, nil
}

// GetStale returns whatever is on disk for key regardless of TTL, without
// ever calling the fetcher. Used by callers that would rather see
// possibly-outdated data than an error after a failed refresh.
func (c *Cache) GetStale(key string) ([]byte, error) {
	entry, err := c.readDisk(key)
	if err != nil {
		return nil, verrors.ErrNotFound.Wrap(err)
	}
	return entry.Payload, nil
}

func (c *Cache) readDisk(key string) (Entry, error) {
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil {
		return Entry{}, err
	}
	return unmarshalWireEntry(data)
}

func (c *Cache) writeDisk(key string, payload []byte) error {
	path := c.diskPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return verrors.ErrInternal.Wrap(err)
	}

	entry := Entry{FetchedAt: time.Now().UTC(), Payload: payload}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.tmp")
	if err != nil {
		return verrors.ErrInternal.Wrap(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(entry.marshalWire()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return verrors.ErrInternal.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return verrors.ErrInternal.Wrap(err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return verrors.ErrInternal.Wrap(err)
	}

	return nil
}

func (c *Cache) writeL2(ctx context.Context, key string, payload []byte) {
	if c.l2 == nil {
		return
	}
	c.l2.Set(ctx, key, payload, c.ttl)
}
