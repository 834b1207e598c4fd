package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/jorgecardleitao/private-jets/internal/metrics"
)

// FetchFunc produces the payload for a key when no backend holds it.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Store is the two-tier content-addressed cache in front of the upstream
// sources. Reads prefer the remote backend and fall back to disk; a miss on
// both triggers the fetch, deduplicated per key so concurrent workers asking
// for the same blob share a single upstream call.
type Store struct {
	remote Backend // optional
	disk   Backend
	group  singleflight.Group
	m      *metrics.Registry
}

// NewStore builds a Store over an optional remote backend and a required
// disk backend.
func NewStore(remote Backend, disk Backend) *Store {
	return &Store{remote: remote, disk: disk, m: metrics.Default()}
}

// GetOrFetch returns the payload under key, fetching and persisting it per
// the policy when no backend holds it. Backend failures other than a plain
// miss abort the call rather than hammering the upstream.
func (s *Store) GetOrFetch(ctx context.Context, key string, policy WritePolicy, fetch FetchFunc) ([]byte, error) {
	data, origin, err := s.lookup(ctx, key)
	if err == nil {
		s.m.CacheHitsTotal.WithLabelValues(origin).Inc()
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have landed the key while we queued.
		data, origin, err := s.lookup(ctx, key)
		if err == nil {
			s.m.CacheHitsTotal.WithLabelValues(origin).Inc()
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.m.CacheMissesTotal.Inc()

		data, err = fetch(ctx)
		if err != nil {
			return nil, err
		}
		if policy == StorePolicy {
			if err := s.persist(ctx, key, data); err != nil {
				return nil, err
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Get reads a key from the backends without ever calling upstream.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, _, err := s.lookup(ctx, key)
	return data, err
}

// Put writes a dataset blob through the same path as fetched entries:
// the remote when writable, the disk always.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	return s.persist(ctx, key, data)
}

// List returns the sorted union of keys under prefix across both backends,
// mirroring the visibility of Get: a key listed here is a key Get can read.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	seen := map[string]struct{}{}
	if s.remote != nil {
		keys, err := s.remote.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("remote list %s: %w", prefix, err)
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}
	keys, err := s.disk.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("disk list %s: %w", prefix, err)
	}
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) lookup(ctx context.Context, key string) ([]byte, string, error) {
	if s.remote != nil {
		data, err := s.remote.Get(ctx, key)
		if err == nil {
			return data, "remote", nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("remote get %s: %w", key, err)
		}
	}
	data, err := s.disk.Get(ctx, key)
	if err == nil {
		return data, "disk", nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("disk get %s: %w", key, err)
	}
	return nil, "", ErrNotFound
}

func (s *Store) persist(ctx context.Context, key string, data []byte) error {
	if s.remote != nil && s.remote.CanPut() {
		if err := s.remote.Put(ctx, key, data); err != nil {
			return fmt.Errorf("remote put %s: %w", key, err)
		}
		s.m.CacheWritesTotal.WithLabelValues("remote").Inc()
	}
	if err := s.disk.Put(ctx, key, data); err != nil {
		return fmt.Errorf("disk put %s: %w", key, err)
	}
	s.m.CacheWritesTotal.WithLabelValues("disk").Inc()
	return nil
}
