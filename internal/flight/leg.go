package flight

import (
	"time"

	"github.com/jorgecardleitao/private-jets/internal/models"
)

// Leg is one non-stop flight between two stops: a maximal airborne run of
// positions. Ends may be airborne samples when the stop was inferred from a
// reception gap; otherwise the first and last samples are grounded.
type Leg struct {
	Positions []models.Position
}

// From returns the first position of the leg.
func (l Leg) From() models.Position { return l.Positions[0] }

// To returns the last position of the leg.
func (l Leg) To() models.Position { return l.Positions[len(l.Positions)-1] }

// Start returns the time of the first position.
func (l Leg) Start() time.Time { return l.From().Time }

// End returns the time of the last position.
func (l Leg) End() time.Time { return l.To().Time }

// Duration returns the observed time between the leg's ends.
func (l Leg) Duration() time.Duration { return l.End().Sub(l.Start()) }

// Hours returns the leg duration in fractional hours.
func (l Leg) Hours() float64 { return l.Duration().Hours() }

// Distance returns the great-circle distance between the leg's ends in km.
func (l Leg) Distance() float64 { return l.From().Distance(l.To()) }

// FlownDistance returns the sum of the great-circle distances between
// consecutive positions in km. It is never below Distance.
func (l Leg) FlownDistance() float64 {
	var total float64
	for i := 1; i < len(l.Positions); i++ {
		total += l.Positions[i-1].Distance(l.Positions[i])
	}
	return total
}

// HoursAbove returns the observed hours spent at or above the given
// altitude in feet, counting only intervals whose both ends qualify.
func (l Leg) HoursAbove(feet float64) float64 {
	var total time.Duration
	for i := 1; i < len(l.Positions); i++ {
		if l.Positions[i-1].AltitudeFt() >= feet && l.Positions[i].AltitudeFt() >= feet {
			total += l.Positions[i].Time.Sub(l.Positions[i-1].Time)
		}
	}
	return total.Hours()
}

// MaxAltitude returns the highest sampled altitude of the leg in feet.
func (l Leg) MaxAltitude() float64 {
	var max float64
	for _, p := range l.Positions {
		if p.AltitudeFt() > max {
			max = p.AltitudeFt()
		}
	}
	return max
}
