package etl

import (
	"testing"
	"time"
)

func TestMonthsSpansRangeInclusive(t *testing.T) {
	from := time.Date(2023, 10, 15, 12, 30, 0, 0, time.UTC)
	to := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	months := Months(from, to)

	want := []time.Time{
		time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(months) != len(want) {
		t.Fatalf("Expected %d months, got %d", len(want), len(months))
	}
	for i := range want {
		if !months[i].Equal(want[i]) {
			t.Errorf("Expected month %d to be %v, got %v", i, want[i], months[i])
		}
	}
}

func TestMonthsSingleMonth(t *testing.T) {
	day := time.Date(2023, 11, 6, 0, 0, 0, 0, time.UTC)

	months := Months(day, day)

	if len(months) != 1 {
		t.Fatalf("Expected 1 month, got %d", len(months))
	}
	if !months[0].Equal(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected 2023-11-01, got %v", months[0])
	}
}

func TestMonthsEmptyWhenReversed(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	if months := Months(from, to); len(months) != 0 {
		t.Fatalf("Expected no months, got %d", len(months))
	}
}

func TestTodoSkipsCompletedAndSorts(t *testing.T) {
	oct := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	nov := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	required := []Unit{
		{Icao: "a835af", Month: nov},
		{Icao: "458d6b", Month: nov},
		{Icao: "458d6b", Month: oct},
	}
	completed := map[Unit]struct{}{
		{Icao: "458d6b", Month: nov}: {},
	}

	units := todo(required, completed)

	if len(units) != 2 {
		t.Fatalf("Expected 2 units, got %d", len(units))
	}
	if units[0].Icao != "458d6b" || !units[0].Month.Equal(oct) {
		t.Errorf("Expected 458d6b/2023-10 first, got %s", units[0])
	}
	if units[1].Icao != "a835af" || !units[1].Month.Equal(nov) {
		t.Errorf("Expected a835af/2023-11 second, got %s", units[1])
	}
}

func TestLegMonthKeyRoundtrip(t *testing.T) {
	month := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	key := LegMonthKey("458d6b", month)

	if key != "leg/v1/data/icao_number=458d6b/month=2023-11/data.csv" {
		t.Fatalf("Unexpected key: %s", key)
	}
	icao, parsed, err := ParseLegMonthKey(key)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if icao != "458d6b" {
		t.Errorf("Expected icao 458d6b, got %s", icao)
	}
	if !parsed.Equal(month) {
		t.Errorf("Expected month %v, got %v", month, parsed)
	}

	if _, _, err := ParseLegMonthKey(StatusKey); err == nil {
		t.Error("Expected an error for a non month-legs key")
	}
}

func TestRollupAndStatusKeys(t *testing.T) {
	if key := RollupKey(2023); key != "leg/v1/all/year=2023/data.csv" {
		t.Errorf("Unexpected rollup key: %s", key)
	}
	if StatusKey != "leg/v1/status.json" {
		t.Errorf("Unexpected status key: %s", StatusKey)
	}
}
