package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/models"
)

// AircraftRepository handles aircraft table operations
type AircraftRepository struct {
	db *sqlx.DB
}

// NewAircraftRepository creates a new aircraft repository
func NewAircraftRepository(db *sqlx.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

// aircraftRow binds one registry row plus the snapshot date it came from.
type aircraftRow struct {
	models.Aircraft
	SnapshotDate time.Time `db:"snapshot_date"`
}

// UpsertSnapshot mirrors a registry snapshot into the aircraft table,
// refreshing rows in place on their ICAO number.
func (r *AircraftRepository) UpsertSnapshot(ctx context.Context, date time.Time, rows []models.Aircraft) error {
	for _, aircraft := range rows {
		row := aircraftRow{Aircraft: aircraft, SnapshotDate: date.UTC()}
		if _, err := r.db.NamedExecContext(ctx, constants.UpsertAircraft, row); err != nil {
			return fmt.Errorf("failed to upsert aircraft %s: %w", aircraft.IcaoNumber, err)
		}
	}
	return nil
}

// GetByIcao fetches one mirrored aircraft, nil when absent.
func (r *AircraftRepository) GetByIcao(ctx context.Context, icaoNumber string) (*models.Aircraft, error) {
	var row aircraftRow
	err := r.db.GetContext(ctx, &row, constants.GetAircraftByIcao, icaoNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch aircraft %s: %w", icaoNumber, err)
	}
	return &row.Aircraft, nil
}

// Count returns the number of mirrored aircraft.
func (r *AircraftRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, constants.CountAircraft); err != nil {
		return 0, fmt.Errorf("failed to count aircraft: %w", err)
	}
	return count, nil
}
