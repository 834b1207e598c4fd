package aircraft

import (
	"context"
	"errors"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/common"
	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/models"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// RegistryService answers registry and consumption-table lookups for the
// ETL jobs, memoizing the decoded snapshots so a run over many months does
// not re-read and re-parse the same blobs per unit.
type RegistryService struct {
	store *storage.Store
	cache common.CacheInterface
	ttl   time.Duration
}

func NewRegistryService(store *storage.Store, cache common.CacheInterface) *RegistryService {
	return &RegistryService{store: store, cache: cache, ttl: 30 * time.Minute}
}

func snapshotCacheKey(date time.Time) string {
	return string(constants.CachePrefixRegistry) + date.UTC().Format("2006-01-02")
}

// Snapshot returns the registry snapshot taken on date, keyed by ICAO
// number.
func (s *RegistryService) Snapshot(ctx context.Context, date time.Time) (map[string]models.Aircraft, error) {
	val, err := s.cache.GetOrSet(snapshotCacheKey(date), s.ttl, func() (any, error) {
		return ReadSnapshot(ctx, s.store, date)
	})
	if err != nil {
		return nil, err
	}
	snapshot, ok := val.(map[string]models.Aircraft)
	if !ok {
		return nil, errors.New("cache type assertion to map[string]models.Aircraft failed")
	}
	return snapshot, nil
}

// Models returns the consumption table.
func (s *RegistryService) Models() (*Models, error) {
	val, err := s.cache.GetOrSet(string(constants.CachePrefixModels)+"table", s.ttl, func() (any, error) {
		return LoadModels()
	})
	if err != nil {
		return nil, err
	}
	table, ok := val.(*Models)
	if !ok {
		return nil, errors.New("cache type assertion to *Models failed")
	}
	return table, nil
}
