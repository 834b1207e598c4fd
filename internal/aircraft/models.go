package aircraft

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/jszwec/csvutil"

	"github.com/jorgecardleitao/private-jets/internal/models"
)

// models.csv is the curated fuel consumption table for aircraft models
// whose primary use is private aviation. A model may appear more than
// once when several sources publish a figure for it.
//
//go:embed models.csv
var modelsCSV []byte

// Models answers whether an aircraft model is a private jet and what
// its cruise fuel consumption is. When multiple sources list the same
// model, the consumption is the mean of the published figures.
type Models struct {
	rows []models.AircraftModel
	gph  map[string]float64
}

// LoadModels parses the embedded consumption table.
func LoadModels() (*Models, error) {
	var rows []models.AircraftModel
	if err := csvutil.Unmarshal(modelsCSV, &rows); err != nil {
		return nil, fmt.Errorf("loading consumption table: %w", err)
	}
	return NewModels(rows), nil
}

// NewModels builds the lookup from explicit rows.
func NewModels(rows []models.AircraftModel) *Models {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, row := range rows {
		sums[row.Model] += float64(row.GPH)
		counts[row.Model]++
	}
	gph := make(map[string]float64, len(sums))
	for model, sum := range sums {
		gph[model] = sum / counts[model]
	}
	return &Models{rows: rows, gph: gph}
}

// Contains reports whether the model is in the table.
func (m *Models) Contains(model string) bool {
	_, ok := m.gph[model]
	return ok
}

// GPH returns the cruise consumption in gallons per hour, averaged
// across sources. ok is false when the model is not in the table.
func (m *Models) GPH(model string) (gph float64, ok bool) {
	gph, ok = m.gph[model]
	return gph, ok
}

// Names returns the distinct model names in the table, sorted.
func (m *Models) Names() []string {
	names := make([]string, 0, len(m.gph))
	for model := range m.gph {
		names = append(names, model)
	}
	sort.Strings(names)
	return names
}

// All returns the raw table rows, one per (model, source) pair.
func (m *Models) All() []models.AircraftModel {
	rows := make([]models.AircraftModel, len(m.rows))
	copy(rows, m.rows)
	return rows
}

// Len is the number of distinct models.
func (m *Models) Len() int {
	return len(m.gph)
}
