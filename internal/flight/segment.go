package flight

import (
	"time"

	"github.com/jorgecardleitao/private-jets/internal/models"
)

// Thresholds of the leg methodology. Below the crossover altitude an
// aircraft that disappears from reception for more than lowAltitudeGap is
// taken to have landed somewhere without coverage; at or above it only a
// much longer silence does (oceanic crossings and remote areas lose
// reception for hours mid-flight).
const (
	crossoverAltitudeFt = 10_000.0
	lowAltitudeGap      = 5 * time.Minute
	highAltitudeGap     = 10 * time.Hour
)

func belowCrossover(p models.Position) bool {
	return p.Flying() && p.AltitudeFt() > 0 && p.AltitudeFt() < crossoverAltitudeFt
}

func atOrAboveCrossover(p models.Position) bool {
	return p.Flying() && p.AltitudeFt() >= crossoverAltitudeFt
}

// pairGrounded classifies the interval between two consecutive samples:
// true when the aircraft is taken to have been on the ground somewhere in
// between. Rules are ordered and the first that applies wins:
//  1. both samples grounded
//  2. either sample below the crossover altitude and the gap above 5 minutes
//  3. either sample at or above the crossover altitude and the gap above 10 hours
//  4. otherwise the aircraft stayed airborne
func pairGrounded(prev, cur models.Position) bool {
	if prev.Grounded() && cur.Grounded() {
		return true
	}
	gap := cur.Time.Sub(prev.Time)
	if (belowCrossover(prev) || belowCrossover(cur)) && gap > lowAltitudeGap {
		return true
	}
	if (atOrAboveCrossover(prev) || atOrAboveCrossover(cur)) && gap > highAltitudeGap {
		return true
	}
	return false
}

// Legs extracts the non-stop flights from the date-ordered positions of one
// aircraft. A leg is a maximal run of consecutive airborne intervals bounded
// by grounded evidence on both sides; at the edges of the observed history a
// grounded sample counts as evidence. Runs truncated by the history edges
// are discarded rather than reported as partial flights.
func Legs(positions []models.Position) []Leg {
	if len(positions) < 2 {
		return nil
	}
	var legs []Leg
	start := -1                        // position index opening the current airborne run
	bounded := positions[0].Grounded() // run is preceded by ground evidence
	for i := 1; i < len(positions); i++ {
		if !pairGrounded(positions[i-1], positions[i]) {
			if start < 0 {
				start = i - 1
			}
			continue
		}
		if start >= 0 {
			if bounded {
				legs = append(legs, Leg{Positions: positions[start:i]})
			}
			start = -1
		}
		bounded = true
	}
	if start >= 0 && bounded && positions[len(positions)-1].Grounded() {
		legs = append(legs, Leg{Positions: positions[start:]})
	}
	return legs
}
