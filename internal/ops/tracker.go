package ops

import (
	"sort"
	"sync"
	"time"
)

// JobProgress is the externally visible state of one job run.
type JobProgress struct {
	Job       string    `json:"job"`
	RunID     string    `json:"run_id"`
	State     string    `json:"state"`
	Total     int       `json:"units_total"`
	Done      int       `json:"units_done"`
	Failed    int       `json:"units_failed"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Run states surfaced on /status.
const (
	RunStateRunning = "running"
	RunStateDone    = "done"
	RunStateFailed  = "failed"
)

// Tracker aggregates job progress for the /status endpoint. A nil *Tracker
// is valid and records nothing, so jobs never check whether the ops server
// is enabled.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]*JobProgress
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*JobProgress)}
}

// StartRun resets the progress of a job for a new run. Scheduled jobs call
// this once per cycle, so /status always shows the current cycle.
func (t *Tracker) StartRun(job, runID string, total int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.runs[job] = &JobProgress{
		Job:       job,
		RunID:     runID,
		State:     RunStateRunning,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// UnitDone records one successfully processed unit.
func (t *Tracker) UnitDone(job string) {
	t.bump(job, func(p *JobProgress) { p.Done++ })
}

// UnitFailed records one unit that exhausted its retries.
func (t *Tracker) UnitFailed(job string) {
	t.bump(job, func(p *JobProgress) { p.Failed++ })
}

// FinishRun marks the run finished; failed when err != nil.
func (t *Tracker) FinishRun(job string, err error) {
	t.bump(job, func(p *JobProgress) {
		if err != nil {
			p.State = RunStateFailed
			return
		}
		p.State = RunStateDone
	})
}

func (t *Tracker) bump(job string, update func(*JobProgress)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[job]
	if !ok {
		return
	}
	update(p)
	p.UpdatedAt = time.Now().UTC()
}

// Snapshot returns the progress of every known job, sorted by job name.
func (t *Tracker) Snapshot() []JobProgress {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]JobProgress, 0, len(t.runs))
	for _, p := range t.runs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
