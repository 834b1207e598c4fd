package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// In-memory Backend counting calls
type fakeBackend struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	canPut  bool
	gets    int
	puts    int
	listErr error
}

func newFakeBackend(canPut bool) *fakeBackend {
	return &fakeBackend{blobs: map[string][]byte{}, canPut: canPut}
}

func (f *fakeBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	data, ok := f.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeBackend) Put(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBackend) List(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeBackend) CanPut() bool { return f.canPut }

func (f *fakeBackend) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func TestStore_GetOrFetch_SingleFlight(t *testing.T) {
	disk := newFakeBackend(true)
	store := NewStore(nil, disk)

	var fetches int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		time.Sleep(50 * time.Millisecond)
		return []byte("payload"), nil
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	results := make([][]byte, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.GetOrFetch(context.Background(), "traces/key.json", StorePolicy, fetch)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("Expected no error, got %v", errs[i])
		}
		if string(results[i]) != "payload" {
			t.Fatalf("Expected payload, got %q", results[i])
		}
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Expected exactly 1 upstream fetch, got %d", got)
	}
	if disk.putCount() != 1 {
		t.Errorf("Expected exactly 1 disk write, got %d", disk.putCount())
	}
}

func TestStore_GetOrFetch_RemoteHit(t *testing.T) {
	remote := newFakeBackend(false)
	remote.blobs["k"] = []byte("from-remote")
	disk := newFakeBackend(true)
	store := NewStore(remote, disk)

	data, err := store.GetOrFetch(context.Background(), "k", StorePolicy, func(ctx context.Context) ([]byte, error) {
		t.Fatal("fetch must not run on a remote hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != "from-remote" {
		t.Errorf("Expected remote payload, got %q", data)
	}
}

func TestStore_GetOrFetch_DiskFallback(t *testing.T) {
	remote := newFakeBackend(false)
	disk := newFakeBackend(true)
	disk.blobs["k"] = []byte("from-disk")
	store := NewStore(remote, disk)

	data, err := store.GetOrFetch(context.Background(), "k", StorePolicy, func(ctx context.Context) ([]byte, error) {
		t.Fatal("fetch must not run on a disk hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != "from-disk" {
		t.Errorf("Expected disk payload, got %q", data)
	}
}

func TestStore_GetOrFetch_ReadOnlyRemoteWritesDiskOnly(t *testing.T) {
	remote := newFakeBackend(false)
	disk := newFakeBackend(true)
	store := NewStore(remote, disk)

	data, err := store.GetOrFetch(context.Background(), "k", StorePolicy, func(ctx context.Context) ([]byte, error) {
		return []byte("fetched"), nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != "fetched" {
		t.Errorf("Expected fetched payload, got %q", data)
	}
	if remote.putCount() != 0 {
		t.Errorf("Expected no writes to read-only remote, got %d", remote.putCount())
	}
	if disk.putCount() != 1 {
		t.Errorf("Expected 1 disk write, got %d", disk.putCount())
	}
}

func TestStore_GetOrFetch_WritableRemoteWritesBoth(t *testing.T) {
	remote := newFakeBackend(true)
	disk := newFakeBackend(true)
	store := NewStore(remote, disk)

	if _, err := store.GetOrFetch(context.Background(), "k", StorePolicy, func(ctx context.Context) ([]byte, error) {
		return []byte("fetched"), nil
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if remote.putCount() != 1 {
		t.Errorf("Expected 1 remote write, got %d", remote.putCount())
	}
	if disk.putCount() != 1 {
		t.Errorf("Expected 1 disk write, got %d", disk.putCount())
	}
}

func TestStore_GetOrFetch_BypassPolicyPersistsNothing(t *testing.T) {
	disk := newFakeBackend(true)
	store := NewStore(nil, disk)

	var fetches int
	fetch := func(ctx context.Context) ([]byte, error) {
		fetches++
		return []byte("live"), nil
	}
	for i := 0; i < 2; i++ {
		data, err := store.GetOrFetch(context.Background(), "k", BypassPolicy, fetch)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if string(data) != "live" {
			t.Fatalf("Expected live payload, got %q", data)
		}
	}
	if fetches != 2 {
		t.Errorf("Expected bypass to refetch every call, got %d fetches", fetches)
	}
	if disk.putCount() != 0 {
		t.Errorf("Expected no disk writes under bypass, got %d", disk.putCount())
	}
}

func TestStore_GetOrFetch_FetchError(t *testing.T) {
	disk := newFakeBackend(true)
	store := NewStore(nil, disk)

	wantErr := errors.New("upstream exploded")
	_, err := store.GetOrFetch(context.Background(), "k", StorePolicy, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected fetch error to propagate, got %v", err)
	}
	if disk.putCount() != 0 {
		t.Errorf("Expected no writes after failed fetch, got %d", disk.putCount())
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(nil, newFakeBackend(true))
	if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_Put_WritesBothBackends(t *testing.T) {
	remote := newFakeBackend(true)
	disk := newFakeBackend(true)
	store := NewStore(remote, disk)

	if err := store.Put(context.Background(), "leg/v1/data.csv", []byte("rows")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(remote.blobs["leg/v1/data.csv"]) != "rows" {
		t.Error("Expected payload on remote backend")
	}
	if string(disk.blobs["leg/v1/data.csv"]) != "rows" {
		t.Error("Expected payload on disk backend")
	}
}

func TestStore_List_UnionOfBackends(t *testing.T) {
	remote := newFakeBackend(false)
	remote.blobs["leg/v1/data/a.csv"] = []byte("1")
	remote.blobs["leg/v1/data/b.csv"] = []byte("2")
	disk := newFakeBackend(true)
	disk.blobs["leg/v1/data/b.csv"] = []byte("2")
	disk.blobs["leg/v1/data/c.csv"] = []byte("3")
	disk.blobs["other/x.json"] = []byte("4")
	store := NewStore(remote, disk)

	keys, err := store.List(context.Background(), "leg/v1/data/")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"leg/v1/data/a.csv", "leg/v1/data/b.csv", "leg/v1/data/c.csv"}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected key %q at %d, got %q", want[i], i, keys[i])
		}
	}
}

func TestPolicyForDate(t *testing.T) {
	past := time.Now().UTC().AddDate(0, 0, -2)
	if got := PolicyForDate(past); got != StorePolicy {
		t.Errorf("Expected StorePolicy for a closed day, got %v", got)
	}
	if got := PolicyForDate(time.Now().UTC()); got != BypassPolicy {
		t.Errorf("Expected BypassPolicy for today, got %v", got)
	}
	if got := PolicyForDate(time.Now().UTC().AddDate(0, 0, 3)); got != BypassPolicy {
		t.Errorf("Expected BypassPolicy for a future day, got %v", got)
	}
}

func TestPolicyForMonth(t *testing.T) {
	if got := PolicyForMonth(time.Now().UTC().AddDate(0, -2, 0)); got != StorePolicy {
		t.Errorf("Expected StorePolicy for a closed month, got %v", got)
	}
	if got := PolicyForMonth(time.Now().UTC()); got != BypassPolicy {
		t.Errorf("Expected BypassPolicy for the current month, got %v", got)
	}
}
