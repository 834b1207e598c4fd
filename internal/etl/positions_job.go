package etl

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
	"github.com/jorgecardleitao/private-jets/internal/ops"
	"github.com/jorgecardleitao/private-jets/internal/storage"
	"github.com/jorgecardleitao/private-jets/internal/trace"
)

// PositionsJob materializes the month-positions dataset for the tracked
// fleet over a month range. Aircraft-months already in the store are
// skipped, so interrupted runs resume where they left off.
type PositionsJob struct {
	store   *storage.Store
	client  *trace.Client
	fleet   *Fleet
	from    time.Time
	to      time.Time
	workers int
	tracker *ops.Tracker
	m       *metrics.Registry

	// Guard, when set, serializes runs across pipeline instances.
	Guard RunGuard
}

func NewPositionsJob(store *storage.Store, client *trace.Client, fleet *Fleet, from, to time.Time, workers int, tracker *ops.Tracker) *PositionsJob {
	if workers <= 0 {
		workers = 10
	}
	return &PositionsJob{
		store:   store,
		client:  client,
		fleet:   fleet,
		from:    from,
		to:      to,
		workers: workers,
		tracker: tracker,
		m:       metrics.Default(),
	}
}

func (j *PositionsJob) Run(ctx context.Context) error {
	release, ok, err := acquire(ctx, j.Guard, "positions")
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[PositionsJob] Another instance holds the run lock; skipping")
		return nil
	}
	defer release()

	start := time.Now()
	runID := uuid.New().String()
	defer func() {
		j.m.JobDuration.WithLabelValues("positions").Observe(time.Since(start).Seconds())
	}()

	units, err := j.todo(ctx)
	if err != nil {
		return fmt.Errorf("computing todo list: %w", err)
	}
	j.tracker.StartRun("positions", runID, len(units))
	j.m.UnitsTotal.WithLabelValues("positions", constants.UnitPending.String()).Add(float64(len(units)))
	log.Printf("[PositionsJob] Run %s: %d aircraft-months to fetch", runID, len(units))

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
			j.m.UnitsTotal.WithLabelValues("positions", constants.UnitFetching.String()).Inc()

			if _, err := j.client.MonthPositions(gctx, j.store, unit.Icao, unit.Month); err != nil {
				failed.Add(1)
				j.m.UnitsTotal.WithLabelValues("positions", constants.UnitFailed.String()).Inc()
				j.tracker.UnitFailed("positions")
				log.Printf("[PositionsJob] Unit %s failed: %v", unit, err)
				return nil
			}
			// MonthPositions decodes and persists in one step.
			j.m.UnitsTotal.WithLabelValues("positions", constants.UnitDecoded.String()).Inc()
			j.m.UnitsTotal.WithLabelValues("positions", constants.UnitWritten.String()).Inc()
			j.tracker.UnitDone("positions")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		j.tracker.FinishRun("positions", err)
		return fmt.Errorf("run interrupted: %w", err)
	}

	if n := failed.Load(); n > 0 {
		err := fmt.Errorf("%d of %d units failed", n, len(units))
		j.tracker.FinishRun("positions", err)
		return err
	}
	j.tracker.FinishRun("positions", nil)
	log.Printf("[PositionsJob] Completed %d units in %s",
		len(units), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// todo lists the aircraft-months of the configured range that are not in
// the store yet. The current month never completes (its blob is not
// persisted while days are still open), so it reappears on every run.
func (j *PositionsJob) todo(ctx context.Context) ([]Unit, error) {
	var required []Unit
	for _, month := range Months(j.from, j.to) {
		jets, err := j.fleet.At(ctx, month)
		if err != nil {
			return nil, err
		}
		for icao := range jets {
			required = append(required, Unit{Icao: icao, Month: month})
		}
	}

	keys, err := j.store.List(ctx, constants.PositionDatabaseRoot)
	if err != nil {
		return nil, err
	}
	completed := make(map[Unit]struct{}, len(keys))
	for _, key := range keys {
		icao, month, err := trace.ParseMonthKey(key)
		if err != nil {
			continue
		}
		completed[Unit{Icao: icao, Month: monthOf(month)}] = struct{}{}
	}
	return todo(required, completed), nil
}

// RunScheduled executes the job immediately and then on every tick until
// the context is cancelled.
func (j *PositionsJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		log.Printf("[PositionsJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[PositionsJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[PositionsJob] Shutting down scheduled runs")
			return
		}
	}
}
