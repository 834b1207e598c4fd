package gorm

import "time"

// Aircraft is the relational mirror of the most recent registry snapshot,
// one row per airframe. The ICAO number is the natural key: re-running the
// registry job refreshes rows in place instead of accumulating history
// (the dated CSV snapshots keep the history).
type Aircraft struct {
	IcaoNumber     string    `gorm:"column:icao_number;primaryKey;type:varchar(10)"`
	TailNumber     string    `gorm:"column:tail_number;type:varchar(20);not null"`
	TypeDesignator string    `gorm:"column:type_designator;type:varchar(10);not null"`
	Model          string    `gorm:"column:model;type:varchar(100);not null"`
	Country        string    `gorm:"column:country;type:varchar(60)"`
	SnapshotDate   time.Time `gorm:"column:snapshot_date;not null"`
}

// TableName specifies the table name for GORM
func (Aircraft) TableName() string {
	return "aircraft"
}
