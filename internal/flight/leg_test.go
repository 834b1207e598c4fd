package flight

import (
	"math"
	"testing"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/models"
)

func TestLeg_Metrics(t *testing.T) {
	base := time.Date(2023, 11, 6, 13, 0, 0, 0, time.UTC)
	leg := Leg{Positions: []models.Position{
		at(base, 0, 55.0, 9.0, nil),
		at(base, 30*time.Minute, 55.5, 10.0, alt(31000)),
		at(base, 60*time.Minute, 56.0, 11.0, alt(41000)),
		at(base, 90*time.Minute, 56.5, 12.0, alt(41000)),
		at(base, 120*time.Minute, 57.0, 13.0, alt(31000)),
		at(base, 150*time.Minute, 57.5, 14.0, nil),
	}}

	if got := leg.Duration(); got != 150*time.Minute {
		t.Errorf("Expected 150m duration, got %v", got)
	}
	if got := leg.Hours(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Expected 2.5 hours, got %f", got)
	}
	if leg.FlownDistance() < leg.Distance() {
		t.Errorf("Expected flown distance %f to be at least the great-circle distance %f",
			leg.FlownDistance(), leg.Distance())
	}
	// both-ends-qualify intervals: 30000 ft holds for the three middle
	// intervals, 40000 ft only for the one between the 41000 samples.
	if got := leg.HoursAbove(30000); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Expected 1.5 hours above 30000 ft, got %f", got)
	}
	if got := leg.HoursAbove(40000); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected 0.5 hours above 40000 ft, got %f", got)
	}
	if got := leg.MaxAltitude(); got != 41000 {
		t.Errorf("Expected max altitude 41000 ft, got %f", got)
	}
}

func TestLeg_EndpointAccessors(t *testing.T) {
	base := time.Date(2023, 11, 6, 13, 0, 0, 0, time.UTC)
	leg := Leg{Positions: []models.Position{
		at(base, 0, 55.0, 9.0, nil),
		at(base, 10*time.Minute, 56.0, 10.0, alt(20000)),
		at(base, 20*time.Minute, 57.0, 11.0, nil),
	}}

	if from := leg.From(); from.Lat != 55.0 || from.Lon != 9.0 {
		t.Errorf("Unexpected from position: %+v", from)
	}
	if to := leg.To(); to.Lat != 57.0 || to.Lon != 11.0 {
		t.Errorf("Unexpected to position: %+v", to)
	}
	if !leg.Start().Equal(base) || !leg.End().Equal(base.Add(20*time.Minute)) {
		t.Errorf("Unexpected leg bounds: %v -> %v", leg.Start(), leg.End())
	}
}
