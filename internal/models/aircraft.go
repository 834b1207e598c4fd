package models

// Aircraft is one row of a registry snapshot
// (aircraft/db/date=*/data.csv), keyed by its lowercase ICAO number.
type Aircraft struct {
	IcaoNumber     string `csv:"icao_number" db:"icao_number" json:"icao_number"`
	TailNumber     string `csv:"tail_number" db:"tail_number" json:"tail_number"`
	TypeDesignator string `csv:"type_designator" db:"type_designator" json:"type_designator"`
	Model          string `csv:"model" db:"model" json:"model"`
	Country        string `csv:"country,omitempty" db:"country" json:"country,omitempty"`
}

// AircraftModel is one row of the fuel consumption table for aircraft
// models whose primary use is to be a private jet. GPH is gallons of
// Jet-A per hour at cruise.
type AircraftModel struct {
	Model  string `csv:"model" json:"model"`
	GPH    uint   `csv:"gph" json:"gph"`
	Source string `csv:"source" json:"source"`
	Date   string `csv:"date" json:"date"`
}
