package models

import "time"

// LegRecord is one row of the published leg datasets
// (leg/v1/data/icao_number=*/month=*/data.csv and the yearly rollups).
// Emission columns are per passenger so the private and commercial
// numbers are directly comparable.
type LegRecord struct {
	IcaoNumber            string    `csv:"icao_number"`
	TailNumber            string    `csv:"tail_number"`
	Model                 string    `csv:"model"`
	Start                 time.Time `csv:"start"`
	End                   time.Time `csv:"end"`
	FromLat               float64   `csv:"from_lat"`
	FromLon               float64   `csv:"from_lon"`
	FromAltitude          float64   `csv:"from_altitude"`
	ToLat                 float64   `csv:"to_lat"`
	ToLon                 float64   `csv:"to_lon"`
	ToAltitude            float64   `csv:"to_altitude"`
	Distance              float64   `csv:"distance"`
	FlownDistance         float64   `csv:"flown_distance"`
	Duration              float64   `csv:"duration"`
	HoursAbove30000       float64   `csv:"hours_above_30000"`
	HoursAbove40000       float64   `csv:"hours_above_40000"`
	CommercialEmissionsKg uint64    `csv:"commercial_emissions_kg"`
	EmissionsKg           uint64    `csv:"emissions_kg"`
}

// Metadata describes the state of one published rollup year,
// written to leg/v1/status.json keyed by year.
type Metadata struct {
	IcaoMonthsToProcess int    `json:"icao_months_to_process"`
	IcaoMonthsProcessed int    `json:"icao_months_processed"`
	URL                 string `json:"url"`
	RunID               string `json:"run_id"`
}
