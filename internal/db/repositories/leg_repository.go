package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jorgecardleitao/private-jets/internal/models/gorm"
)

// LegRepository handles legs table operations using GORM
type LegRepository struct {
	db *gormlib.DB
}

// NewLegRepository creates a new GORM-based leg repository
func NewLegRepository(db *gormlib.DB) *LegRepository {
	return &LegRepository{db: db}
}

// legUpdateColumns are refreshed when a re-run rewrites a leg.
var legUpdateColumns = []string{
	"tail_number", "model", "end_time",
	"from_lat", "from_lon", "from_altitude",
	"to_lat", "to_lon", "to_altitude",
	"distance_km", "flown_distance_km", "duration_hours",
	"hours_above_30000", "hours_above_40000",
	"commercial_emissions_kg", "emissions_kg", "updated_at",
}

// UpsertBatch inserts or refreshes leg rows.
// ON CONFLICT (icao_number, start_time) DO UPDATE, so re-running a month
// converges to one row per leg instead of accumulating duplicates.
func (r *LegRepository) UpsertBatch(ctx context.Context, legs []gorm.Leg) error {
	if len(legs) == 0 {
		return nil
	}
	for i := range legs {
		if legs[i].ID == "" {
			legs[i].ID = uuid.New().String()
		}
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "icao_number"},
				{Name: "start_time"},
			},
			DoUpdates: clause.AssignmentColumns(legUpdateColumns),
		}).
		Create(&legs).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d legs: %w", len(legs), err)
	}
	return nil
}

// Count returns the number of stored legs.
func (r *LegRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&gorm.Leg{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count legs: %w", err)
	}
	return count, nil
}

// ByIcaoNumber returns the stored legs of one aircraft ordered by start time.
func (r *LegRepository) ByIcaoNumber(ctx context.Context, icaoNumber string) ([]gorm.Leg, error) {
	var legs []gorm.Leg
	err := r.db.WithContext(ctx).
		Where("icao_number = ?", icaoNumber).
		Order("start_time").
		Find(&legs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch legs for %s: %w", icaoNumber, err)
	}
	return legs, nil
}
