package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"golang.org/x/sync/errgroup"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/db/repositories"
	"github.com/jorgecardleitao/private-jets/internal/emissions"
	"github.com/jorgecardleitao/private-jets/internal/flight"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
	"github.com/jorgecardleitao/private-jets/internal/models"
	gormModels "github.com/jorgecardleitao/private-jets/internal/models/gorm"
	"github.com/jorgecardleitao/private-jets/internal/ops"
	"github.com/jorgecardleitao/private-jets/internal/storage"
	"github.com/jorgecardleitao/private-jets/internal/trace"
)

// LegsJob turns stored month positions into the published legs datasets:
// one CSV per aircraft-month, one rollup per year, and a status document.
// When a database is configured each leg is also mirrored into Postgres.
type LegsJob struct {
	store   *storage.Store
	fleet   *Fleet
	repo    *repositories.LegRepository // optional
	baseURL string
	workers int
	tracker *ops.Tracker
	m       *metrics.Registry

	// Guard, when set, serializes runs across pipeline instances.
	Guard RunGuard
}

func NewLegsJob(store *storage.Store, fleet *Fleet, repo *repositories.LegRepository, baseURL string, workers int, tracker *ops.Tracker) *LegsJob {
	if workers <= 0 {
		workers = 10
	}
	return &LegsJob{
		store:   store,
		fleet:   fleet,
		repo:    repo,
		baseURL: baseURL,
		workers: workers,
		tracker: tracker,
		m:       metrics.Default(),
	}
}

func (j *LegsJob) Run(ctx context.Context) error {
	release, ok, err := acquire(ctx, j.Guard, "legs")
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[LegsJob] Another instance holds the run lock; skipping")
		return nil
	}
	defer release()

	start := time.Now()
	runID := uuid.New().String()
	defer func() {
		j.m.JobDuration.WithLabelValues("legs").Observe(time.Since(start).Seconds())
	}()

	units, err := j.todo(ctx)
	if err != nil {
		return fmt.Errorf("computing todo list: %w", err)
	}
	j.tracker.StartRun("legs", runID, len(units))
	j.m.UnitsTotal.WithLabelValues("legs", constants.UnitPending.String()).Add(float64(len(units)))
	log.Printf("[LegsJob] Run %s: %d aircraft-months to segment", runID, len(units))

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j.m.UnitsInFlight.Inc()
			defer j.m.UnitsInFlight.Dec()

			n, err := j.processUnit(gctx, unit)
			if err != nil {
				failed.Add(1)
				j.m.UnitsTotal.WithLabelValues("legs", constants.UnitFailed.String()).Inc()
				j.tracker.UnitFailed("legs")
				log.Printf("[LegsJob] Unit %s failed: %v", unit, err)
				return nil
			}
			j.m.UnitsTotal.WithLabelValues("legs", constants.UnitWritten.String()).Inc()
			j.m.LegsWritten.Add(float64(n))
			j.tracker.UnitDone("legs")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		j.tracker.FinishRun("legs", err)
		return fmt.Errorf("run interrupted: %w", err)
	}

	// The rollups are rebuilt even when some units failed: the datasets
	// should always reflect everything segmented so far.
	if err := j.aggregate(ctx, runID); err != nil {
		j.tracker.FinishRun("legs", err)
		return fmt.Errorf("publishing rollups: %w", err)
	}

	if n := failed.Load(); n > 0 {
		err := fmt.Errorf("%d of %d units failed", n, len(units))
		j.tracker.FinishRun("legs", err)
		return err
	}
	j.tracker.FinishRun("legs", nil)
	log.Printf("[LegsJob] Completed %d units in %s",
		len(units), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// todo lists the aircraft-months that have positions stored but no legs
// published yet.
func (j *LegsJob) todo(ctx context.Context) ([]Unit, error) {
	ready, err := j.listUnits(ctx, constants.PositionDatabaseRoot, trace.ParseMonthKey)
	if err != nil {
		return nil, err
	}
	done, err := j.listUnits(ctx, constants.LegDataRoot, ParseLegMonthKey)
	if err != nil {
		return nil, err
	}
	completed := make(map[Unit]struct{}, len(done))
	for _, u := range done {
		completed[u] = struct{}{}
	}
	return todo(ready, completed), nil
}

func (j *LegsJob) listUnits(ctx context.Context, root string, parse func(string) (string, time.Time, error)) ([]Unit, error) {
	keys, err := j.store.List(ctx, root)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, len(keys))
	for _, key := range keys {
		icao, month, err := parse(key)
		if err != nil {
			continue
		}
		units = append(units, Unit{Icao: icao, Month: monthOf(month)})
	}
	return units, nil
}

// processUnit segments one aircraft-month into legs and publishes its CSV.
// Returns the number of legs written.
func (j *LegsJob) processUnit(ctx context.Context, unit Unit) (int, error) {
	jets, err := j.fleet.At(ctx, unit.Month)
	if err != nil {
		return 0, err
	}
	identity, ok := jets[unit.Icao]
	if !ok {
		return 0, trace.NewSourceError(constants.ErrCodeUnknownAircraft, unit.String(), nil)
	}

	raw, err := j.store.Get(ctx, trace.MonthKey(unit.Icao, unit.Month))
	if err != nil {
		return 0, fmt.Errorf("reading month positions: %w", err)
	}
	var days map[string][]models.Position
	if err := json.Unmarshal(raw, &days); err != nil {
		return 0, trace.NewSourceError(constants.ErrCodeMalformedPayload, unit.String(), err)
	}

	legs := flight.Legs(trace.Stitch(days))
	j.m.UnitsTotal.WithLabelValues("legs", constants.UnitSegmented.String()).Inc()

	table, err := j.fleet.Models()
	if err != nil {
		return 0, err
	}
	gph, hasGPH := table.GPH(identity.Model)
	if !hasGPH {
		log.Printf("[LegsJob] No consumption figure for %q; private emissions of %s left at zero",
			identity.Model, unit)
	}

	records := make([]models.LegRecord, 0, len(legs))
	for _, leg := range legs {
		record := models.LegRecord{
			IcaoNumber:      unit.Icao,
			TailNumber:      identity.TailNumber,
			Model:           identity.Model,
			Start:           leg.Start(),
			End:             leg.End(),
			FromLat:         leg.From().Lat,
			FromLon:         leg.From().Lon,
			FromAltitude:    leg.From().AltitudeFt(),
			ToLat:           leg.To().Lat,
			ToLon:           leg.To().Lon,
			ToAltitude:      leg.To().AltitudeFt(),
			Distance:        leg.Distance(),
			FlownDistance:   leg.FlownDistance(),
			Duration:        leg.Hours(),
			HoursAbove30000: leg.HoursAbove(30000),
			HoursAbove40000: leg.HoursAbove(40000),
			CommercialEmissionsKg: uint64(math.Round(
				emissions.CommercialKg(leg.From().Coord(), leg.To().Coord(), emissions.First))),
		}
		if hasGPH {
			record.EmissionsKg = uint64(math.Round(
				emissions.PerPassengerKg(emissions.LegCO2Kg(gph, leg.Duration()))))
		}
		records = append(records, record)
	}

	data, err := csvutil.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("encoding legs: %w", err)
	}
	if err := j.store.Put(ctx, LegMonthKey(unit.Icao, unit.Month), data); err != nil {
		return 0, err
	}

	if j.repo != nil {
		if err := j.repo.UpsertBatch(ctx, toGormLegs(records)); err != nil {
			return 0, fmt.Errorf("mirroring legs: %w", err)
		}
	}
	return len(records), nil
}

// aggregate rebuilds the yearly rollups and the status document from every
// month CSV in the store.
func (j *LegsJob) aggregate(ctx context.Context, runID string) error {
	legKeys, err := j.store.List(ctx, constants.LegDataRoot)
	if err != nil {
		return err
	}
	positionKeys, err := j.store.List(ctx, constants.PositionDatabaseRoot)
	if err != nil {
		return err
	}

	byYear := make(map[int][]string)
	processed := make(map[int]int)
	for _, key := range legKeys {
		_, month, err := ParseLegMonthKey(key)
		if err != nil {
			continue
		}
		byYear[month.Year()] = append(byYear[month.Year()], key)
		processed[month.Year()]++
	}
	toProcess := make(map[int]int)
	for _, key := range positionKeys {
		_, month, err := trace.ParseMonthKey(key)
		if err != nil {
			continue
		}
		toProcess[month.Year()]++
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	status := make(map[string]models.Metadata, len(years))
	for _, year := range years {
		monthKeys := byYear[year]
		sort.Strings(monthKeys)

		all := make([]models.LegRecord, 0)
		for _, key := range monthKeys {
			data, err := j.store.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", key, err)
			}
			var records []models.LegRecord
			if err := csvutil.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
			all = append(all, records...)
		}
		sort.Slice(all, func(i, k int) bool {
			if !all[i].Start.Equal(all[k].Start) {
				return all[i].Start.Before(all[k].Start)
			}
			return all[i].IcaoNumber < all[k].IcaoNumber
		})

		data, err := csvutil.Marshal(all)
		if err != nil {
			return fmt.Errorf("encoding year %d rollup: %w", year, err)
		}
		key := RollupKey(year)
		if err := j.store.Put(ctx, key, data); err != nil {
			return err
		}
		status[strconv.Itoa(year)] = models.Metadata{
			IcaoMonthsToProcess: toProcess[year],
			IcaoMonthsProcessed: processed[year],
			URL:                 j.datasetURL(key),
			RunID:               runID,
		}
		log.Printf("[LegsJob] Published %s with %d legs", key, len(all))
	}

	blob, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return j.store.Put(ctx, StatusKey, blob)
}

func (j *LegsJob) datasetURL(key string) string {
	if j.baseURL == "" {
		return key
	}
	return strings.TrimSuffix(j.baseURL, "/") + "/" + key
}

func toGormLegs(records []models.LegRecord) []gormModels.Leg {
	legs := make([]gormModels.Leg, 0, len(records))
	for _, r := range records {
		legs = append(legs, gormModels.Leg{
			IcaoNumber:            r.IcaoNumber,
			TailNumber:            r.TailNumber,
			Model:                 r.Model,
			Start:                 r.Start,
			End:                   r.End,
			FromLat:               r.FromLat,
			FromLon:               r.FromLon,
			FromAltitude:          r.FromAltitude,
			ToLat:                 r.ToLat,
			ToLon:                 r.ToLon,
			ToAltitude:            r.ToAltitude,
			Distance:              r.Distance,
			FlownDistance:         r.FlownDistance,
			Duration:              r.Duration,
			HoursAbove30000:       r.HoursAbove30000,
			HoursAbove40000:       r.HoursAbove40000,
			CommercialEmissionsKg: r.CommercialEmissionsKg,
			EmissionsKg:           r.EmissionsKg,
		})
	}
	return legs
}

// RunScheduled executes the job immediately and then on every tick until
// the context is cancelled.
func (j *LegsJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		log.Printf("[LegsJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[LegsJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[LegsJob] Shutting down scheduled runs")
			return
		}
	}
}
