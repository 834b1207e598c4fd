package trace

import (
	"fmt"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// DayKey returns the dataset key of one aircraft-day of raw trace data.
func DayKey(icao string, day time.Time) string {
	return fmt.Sprintf("%sicao_number=%s/date=%s/trace.json",
		constants.TraceDatabaseRoot, icao, day.Format("2006-01-02"))
}

// MonthKey returns the dataset key of one aircraft-month of positions.
func MonthKey(icao string, month time.Time) string {
	return fmt.Sprintf("%sicao_number=%s/month=%s/data.json",
		constants.PositionDatabaseRoot, icao, month.Format("2006-01"))
}

// ParseMonthKey recovers the icao number and month from a month-positions
// dataset key, as returned by listing the positions root.
func ParseMonthKey(key string) (string, time.Time, error) {
	parts := storage.HiveParts(key)
	icao, month := parts["icao_number"], parts["month"]
	if icao == "" || month == "" {
		return "", time.Time{}, fmt.Errorf("not a month positions key: %s", key)
	}
	m, err := time.Parse("2006-01", month)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parsing month of %s: %w", key, err)
	}
	return icao, m, nil
}
