package trace

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/models"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

// DayTrace returns the raw day trace through the store: read from the
// backends when present, fetched from the source and persisted otherwise.
// Open days are served live and never persisted.
func (c *Client) DayTrace(ctx context.Context, store *storage.Store, icao string, day time.Time) ([]byte, error) {
	return store.GetOrFetch(ctx, DayKey(icao, day), storage.PolicyForDate(day),
		func(ctx context.Context) ([]byte, error) {
			return c.FetchDayTrace(ctx, icao, day)
		})
}

// MonthPositions returns the decoded positions of one aircraft-month keyed
// by ISO date ("2023-11-06"), assembling the month blob from its day traces
// when no backend holds it. Days that have not ended are left out, so the
// blob is only persisted once the month is closed.
func (c *Client) MonthPositions(ctx context.Context, store *storage.Store, icao string, month time.Time) (map[string][]models.Position, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	key := MonthKey(icao, first)

	fetch := func(ctx context.Context) ([]byte, error) {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		end := first.AddDate(0, 1, 0)
		days := map[string][]models.Position{}
		for day := first; day.Before(end) && day.Before(today); day = day.AddDate(0, 0, 1) {
			raw, err := c.DayTrace(ctx, store, icao, day)
			if err != nil {
				return nil, err
			}
			positions, err := DecodePositions(raw)
			if err != nil {
				return nil, err
			}
			days[day.Format("2006-01-02")] = positions
		}
		return json.Marshal(days)
	}

	raw, err := store.GetOrFetch(ctx, key, storage.PolicyForMonth(first), fetch)
	if err != nil {
		return nil, err
	}
	var days map[string][]models.Position
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, NewSourceError(constants.ErrCodeMalformedPayload, key, err)
	}
	return days, nil
}

// Stitch concatenates a month of positions in date order, so that legs
// crossing midnight survive the per-day storage layout.
func Stitch(days map[string][]models.Position) []models.Position {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var positions []models.Position
	for _, d := range dates {
		positions = append(positions, days[d]...)
	}
	return positions
}
