package etl

import "context"

// RunGuard serializes job runs across pipeline instances. Acquire reports
// false when another instance holds the named job's lock; the returned
// release function must be called once the run is over.
type RunGuard interface {
	Acquire(ctx context.Context, job string) (release func(), ok bool, err error)
}

// acquire takes the guard's lock for job when a guard is configured.
// The second return is false when the run should be skipped.
func acquire(ctx context.Context, guard RunGuard, job string) (func(), bool, error) {
	if guard == nil {
		return func() {}, true, nil
	}
	return guard.Acquire(ctx, job)
}
