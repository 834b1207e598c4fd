// Package emissions computes CO2e figures for private-jet legs and their
// commercial-flight equivalents. Every constant in this package is part of
// the published methodology: changing one changes the meaning of the whole
// dataset, so none of them is configurable.
package emissions

import "time"

const (
	litersPerGallon = 3.78541
	kgPerLiter      = 0.8  // Jet-A density
	co2PerKgFuel    = 3.16 // kg CO2 per kg of fuel burnt
	radiativeIndex  = 3.0  // non-CO2 warming at altitude
	lifeCycleFactor = 1.68 // upstream fuel production
	// occupancyFactor normalizes a whole-aircraft figure to one passenger,
	// assuming 1/0.23 ≈ 4.3 passengers per flight.
	occupancyFactor = 0.23
)

// LegCO2Kg returns the total CO2e emissions in kg of a private jet with the
// given fuel consumption in gallons per hour flying for the given duration.
func LegCO2Kg(gph float64, duration time.Duration) float64 {
	hours := duration.Seconds() / 60.0 / 60.0
	return gph * hours * litersPerGallon * kgPerLiter * co2PerKgFuel * radiativeIndex * lifeCycleFactor
}

// PerPassengerKg normalizes total leg emissions to one passenger.
func PerPassengerKg(totalKg float64) float64 {
	return totalKg * occupancyFactor
}
