package constants

import (
	"database/sql/driver"
	"fmt"
)

type (
	CachePrefix string
)

const (
	CachePrefixRegistry CachePrefix = "AC_DB_"
	CachePrefixModels   CachePrefix = "AC_MODELS_"
)

// Dataset roots on the blob store. Layout is hive-partitioned so that
// downstream engines can prune on icao_number/month/date.
const (
	TraceDatabaseRoot    = "globe_history/"
	PositionDatabaseRoot = "database/trace/"
	LegDatabaseRoot      = "leg/v1/"
	LegDataRoot          = "leg/v1/data/"
	AircraftDatabaseRoot = "aircraft/db/"
)

// UnitState mirrors the lifecycle of one ETL work unit
type UnitState string

const (
	UnitPending   UnitState = "PENDING"
	UnitFetching  UnitState = "FETCHING"
	UnitDecoded   UnitState = "DECODED"
	UnitSegmented UnitState = "SEGMENTED"
	UnitWritten   UnitState = "WRITTEN"
	UnitFailed    UnitState = "FAILED"
)

func (s UnitState) String() string { return string(s) }

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (s *UnitState) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = UnitState(v)
	case []byte:
		*s = UnitState(v)
	default:
		return fmt.Errorf("UnitState: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s UnitState) Value() (driver.Value, error) { return string(s), nil }
