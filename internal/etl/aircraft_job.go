package etl

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jorgecardleitao/private-jets/internal/aircraft"
	"github.com/jorgecardleitao/private-jets/internal/db/repositories"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
	"github.com/jorgecardleitao/private-jets/internal/ops"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// AircraftJob publishes a dated snapshot of the worldwide registry and,
// when a database is configured, mirrors it into the aircraft table.
type AircraftJob struct {
	store   *storage.Store
	client  *aircraft.RegistryClient
	repo    *repositories.AircraftRepository // optional
	tracker *ops.Tracker
	m       *metrics.Registry

	// Guard, when set, serializes runs across pipeline instances.
	Guard RunGuard
}

func NewAircraftJob(store *storage.Store, client *aircraft.RegistryClient, repo *repositories.AircraftRepository, tracker *ops.Tracker) *AircraftJob {
	return &AircraftJob{
		store:   store,
		client:  client,
		repo:    repo,
		tracker: tracker,
		m:       metrics.Default(),
	}
}

func (j *AircraftJob) Run(ctx context.Context) error {
	release, ok, err := acquire(ctx, j.Guard, "aircraft")
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[AircraftJob] Another instance holds the run lock; skipping")
		return nil
	}
	defer release()

	start := time.Now()
	runID := uuid.New().String()
	defer func() {
		j.m.JobDuration.WithLabelValues("aircraft").Observe(time.Since(start).Seconds())
	}()

	log.Printf("[AircraftJob] Starting registry snapshot, run %s", runID)
	j.tracker.StartRun("aircraft", runID, 1)

	fail := func(err error) error {
		j.tracker.UnitFailed("aircraft")
		j.tracker.FinishRun("aircraft", err)
		return err
	}

	rows, err := j.client.Fetch(ctx)
	if err != nil {
		return fail(fmt.Errorf("fetching registry: %w", err))
	}

	date := time.Now().UTC()
	if err := aircraft.WriteSnapshot(ctx, j.store, date, rows); err != nil {
		return fail(fmt.Errorf("writing snapshot: %w", err))
	}
	if j.repo != nil {
		if err := j.repo.UpsertSnapshot(ctx, date, rows); err != nil {
			return fail(fmt.Errorf("mirroring snapshot: %w", err))
		}
	}

	j.tracker.UnitDone("aircraft")
	j.tracker.FinishRun("aircraft", nil)
	log.Printf("[AircraftJob] Completed snapshot of %d aircraft in %s",
		len(rows), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// RunScheduled executes the job immediately and then on every tick until
// the context is cancelled.
func (j *AircraftJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		log.Printf("[AircraftJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[AircraftJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[AircraftJob] Shutting down scheduled runs")
			return
		}
	}
}
