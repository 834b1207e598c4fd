package aircraft

import (
	"testing"

	"github.com/jorgecardleitao/private-jets/internal/models"
)

func TestLoadModels(t *testing.T) {
	table, err := LoadModels()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !table.Contains("Cessna Citation Excel") {
		t.Error("Expected table to contain Cessna Citation Excel")
	}
	if table.Contains("Airbus A320") {
		t.Error("Did not expect an airliner in the consumption table")
	}

	gph, ok := table.GPH("Cessna Citation Excel")
	if !ok {
		t.Fatal("Expected a consumption figure for Cessna Citation Excel")
	}
	if gph != 174 {
		t.Errorf("Expected 174 gph, got %v", gph)
	}

	// The G550 is listed by two sources; the table must answer the mean.
	gph, ok = table.GPH("Gulfstream G550")
	if !ok {
		t.Fatal("Expected a consumption figure for Gulfstream G550")
	}
	if gph != 369 {
		t.Errorf("Expected 369 gph (mean of 358 and 380), got %v", gph)
	}

	if table.Len() < 30 {
		t.Errorf("Expected at least 30 distinct models, got %d", table.Len())
	}
	if len(table.Names()) != table.Len() {
		t.Errorf("Expected %d names, got %d", table.Len(), len(table.Names()))
	}
}

func TestNewModels_AveragesAcrossSources(t *testing.T) {
	table := NewModels([]models.AircraftModel{
		{Model: "Example Jet", GPH: 100, Source: "a", Date: "2023-01-01"},
		{Model: "Example Jet", GPH: 200, Source: "b", Date: "2023-02-01"},
		{Model: "Other Jet", GPH: 300, Source: "a", Date: "2023-01-01"},
	})

	gph, ok := table.GPH("Example Jet")
	if !ok {
		t.Fatal("Expected Example Jet in the table")
	}
	if gph != 150 {
		t.Errorf("Expected 150 gph, got %v", gph)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 distinct models, got %d", table.Len())
	}
	if got := len(table.All()); got != 3 {
		t.Errorf("Expected 3 raw rows, got %d", got)
	}
}
