package gorm

import "time"

// Leg is the relational mirror of one published leg row. The two unique
// indexes encode the dataset contract: an aircraft has at most one leg
// starting and at most one leg ending at a given instant, across every
// re-run of the pipeline.
type Leg struct {
	ID string `gorm:"column:id;primaryKey;type:uuid"`

	IcaoNumber string    `gorm:"column:icao_number;type:varchar(10);not null;uniqueIndex:idx_leg_start,priority:1;uniqueIndex:idx_leg_end,priority:1"`
	TailNumber string    `gorm:"column:tail_number;type:varchar(20);not null"`
	Model      string    `gorm:"column:model;type:varchar(100);not null"`
	Start      time.Time `gorm:"column:start_time;not null;uniqueIndex:idx_leg_start,priority:2"`
	End        time.Time `gorm:"column:end_time;not null;uniqueIndex:idx_leg_end,priority:2"`

	FromLat      float64 `gorm:"column:from_lat;type:numeric(9,5)"`
	FromLon      float64 `gorm:"column:from_lon;type:numeric(9,5)"`
	FromAltitude float64 `gorm:"column:from_altitude;type:numeric(8,1)"`
	ToLat        float64 `gorm:"column:to_lat;type:numeric(9,5)"`
	ToLon        float64 `gorm:"column:to_lon;type:numeric(9,5)"`
	ToAltitude   float64 `gorm:"column:to_altitude;type:numeric(8,1)"`

	Distance        float64 `gorm:"column:distance_km;type:numeric(10,3)"`
	FlownDistance   float64 `gorm:"column:flown_distance_km;type:numeric(10,3)"`
	Duration        float64 `gorm:"column:duration_hours;type:numeric(10,4)"`
	HoursAbove30000 float64 `gorm:"column:hours_above_30000;type:numeric(10,4)"`
	HoursAbove40000 float64 `gorm:"column:hours_above_40000;type:numeric(10,4)"`

	CommercialEmissionsKg uint64 `gorm:"column:commercial_emissions_kg"`
	EmissionsKg           uint64 `gorm:"column:emissions_kg"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Leg) TableName() string {
	return "legs"
}
