package etl

import (
	"context"
	"errors"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/aircraft"
	"github.com/jorgecardleitao/private-jets/internal/models"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// Fleet selects the aircraft the pipeline tracks: registry rows whose
// model appears in the consumption table, optionally restricted to one
// country of registration.
type Fleet struct {
	store    *storage.Store
	registry *aircraft.RegistryService
	country  string
}

func NewFleet(store *storage.Store, registry *aircraft.RegistryService, country string) *Fleet {
	return &Fleet{store: store, registry: registry, country: country}
}

// Models returns the consumption table backing the fleet selection.
func (f *Fleet) Models() (*aircraft.Models, error) {
	return f.registry.Models()
}

// At returns the tracked fleet as of month, keyed by icao number.
//
// The registry is a moving target, so each month is resolved against the
// newest snapshot taken before that month ends. Months older than every
// snapshot fall back to the oldest one: an approximation, but the only
// data there is.
func (f *Fleet) At(ctx context.Context, month time.Time) (map[string]models.Aircraft, error) {
	dates, err := aircraft.SnapshotDates(ctx, f.store)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, errors.New("no registry snapshots stored; run the aircraft job first")
	}
	end := monthOf(month).AddDate(0, 1, 0)
	chosen := dates[0]
	for _, d := range dates {
		if d.Before(end) {
			chosen = d
		}
	}

	snapshot, err := f.registry.Snapshot(ctx, chosen)
	if err != nil {
		return nil, err
	}
	table, err := f.registry.Models()
	if err != nil {
		return nil, err
	}

	jets := make(map[string]models.Aircraft)
	for icao, a := range snapshot {
		if !table.Contains(a.Model) {
			continue
		}
		if f.country != "" && a.Country != f.country {
			continue
		}
		jets[icao] = a
	}
	return jets, nil
}
