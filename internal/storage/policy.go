package storage

import "time"

// WritePolicy decides whether a fetched payload is persisted. Entries are
// only stored once their coverage window has closed: the upstream publishes
// a day's trace after the day is over, so anything newer is not yet
// immutable and must be refetched on the next run.
type WritePolicy int

const (
	// StorePolicy persists fetched payloads to the configured backends.
	StorePolicy WritePolicy = iota
	// BypassPolicy serves fetched payloads without persisting them.
	BypassPolicy
)

func (p WritePolicy) String() string {
	if p == BypassPolicy {
		return "bypass"
	}
	return "store"
}

// PolicyForDate returns the policy for an entry covering a single calendar
// day (UTC). Days that have not ended are never persisted.
func PolicyForDate(day time.Time) WritePolicy {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !day.UTC().Truncate(24 * time.Hour).Before(today) {
		return BypassPolicy
	}
	return StorePolicy
}

// PolicyForMonth returns the policy for an entry covering a whole calendar
// month. The month is only archival once its last day's data has been
// published, i.e. once the first day of the following month has passed.
func PolicyForMonth(month time.Time) WritePolicy {
	m := month.UTC()
	nextMonth := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return PolicyForDate(nextMonth)
}
