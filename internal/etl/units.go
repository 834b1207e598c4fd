package etl

import (
	"fmt"
	"sort"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// Unit is one aircraft-month of work, the granularity at which the
// pipeline fetches, segments, publishes and resumes.
type Unit struct {
	Icao  string
	Month time.Time
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%s", u.Icao, u.Month.Format("2006-01"))
}

// monthOf normalizes a time to the first instant of its UTC month, so
// units built from flags, dataset keys and snapshots compare equal as map
// keys.
func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Months lists the first days of every month from from to to, inclusive.
func Months(from, to time.Time) []time.Time {
	first, last := monthOf(from), monthOf(to)
	var months []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// sortUnits orders units by (month, icao): oldest months first, so long
// backfills publish history in order.
func sortUnits(units []Unit) {
	sort.Slice(units, func(i, j int) bool {
		if !units[i].Month.Equal(units[j].Month) {
			return units[i].Month.Before(units[j].Month)
		}
		return units[i].Icao < units[j].Icao
	})
}

// todo returns the required units missing from completed, sorted.
func todo(required []Unit, completed map[Unit]struct{}) []Unit {
	var out []Unit
	for _, u := range required {
		if _, ok := completed[u]; !ok {
			out = append(out, u)
		}
	}
	sortUnits(out)
	return out
}

// LegMonthKey is the dataset key of one aircraft-month of legs.
func LegMonthKey(icao string, month time.Time) string {
	return fmt.Sprintf("%sicao_number=%s/month=%s/data.csv",
		constants.LegDataRoot, icao, month.Format("2006-01"))
}

// ParseLegMonthKey recovers the icao number and month from a month-legs
// dataset key, as returned by listing the legs data root.
func ParseLegMonthKey(key string) (string, time.Time, error) {
	parts := storage.HiveParts(key)
	icao, month := parts["icao_number"], parts["month"]
	if icao == "" || month == "" {
		return "", time.Time{}, fmt.Errorf("not a month legs key: %s", key)
	}
	m, err := time.Parse("2006-01", month)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parsing month of %s: %w", key, err)
	}
	return icao, m, nil
}

// RollupKey is the dataset key of one year's consolidated legs.
func RollupKey(year int) string {
	return fmt.Sprintf("%sall/year=%d/data.csv", constants.LegDatabaseRoot, year)
}

// StatusKey is the dataset key of the pipeline status document.
const StatusKey = constants.LegDatabaseRoot + "status.json"
