package repositories

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"

	"github.com/jorgecardleitao/private-jets/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gormlib.DB {
	db, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&gorm.Leg{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestLegRepository_UpsertBatchIsIdempotent(t *testing.T) {
	repo := NewLegRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2023, 11, 6, 8, 30, 0, 0, time.UTC)
	leg := gorm.Leg{
		IcaoNumber:            "458d6b",
		TailNumber:            "OY-EUR",
		Model:                 "Cessna Citation CJ3",
		Start:                 start,
		End:                   start.Add(90 * time.Minute),
		FromLat:               52.5644,
		FromLon:               13.3088,
		ToLat:                 50.9010,
		ToLon:                 4.4844,
		Distance:              642.83,
		FlownDistance:         655.2,
		Duration:              1.5,
		CommercialEmissionsKg: 396,
		EmissionsKg:           6657,
	}
	if err := repo.UpsertBatch(ctx, []gorm.Leg{leg}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Re-running the month recomputes the same leg, possibly with
	// refreshed figures. The row must be updated, not duplicated.
	leg.ID = ""
	leg.EmissionsKg = 6700
	if err := repo.UpsertBatch(ctx, []gorm.Leg{leg}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 leg after re-run, got %d", count)
	}

	rows, err := repo.ByIcaoNumber(ctx, "458d6b")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 leg, got %d", len(rows))
	}
	got := rows[0]
	if got.ID == "" {
		t.Error("Expected a generated leg id")
	}
	if got.EmissionsKg != 6700 {
		t.Errorf("Expected refreshed emissions 6700, got %d", got.EmissionsKg)
	}
	if !got.Start.Equal(start) {
		t.Errorf("Expected start %v, got %v", start, got.Start)
	}
}

func TestLegRepository_ByIcaoNumberOrdersByStart(t *testing.T) {
	repo := NewLegRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2023, 11, 6, 8, 0, 0, 0, time.UTC)
	later := gorm.Leg{
		IcaoNumber: "a835af", TailNumber: "N835AF", Model: "Gulfstream G550",
		Start: base.Add(6 * time.Hour), End: base.Add(8 * time.Hour),
	}
	earlier := gorm.Leg{
		IcaoNumber: "a835af", TailNumber: "N835AF", Model: "Gulfstream G550",
		Start: base, End: base.Add(2 * time.Hour),
	}
	if err := repo.UpsertBatch(ctx, []gorm.Leg{later, earlier}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows, err := repo.ByIcaoNumber(ctx, "a835af")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 legs, got %d", len(rows))
	}
	if !rows[0].Start.Equal(base) {
		t.Errorf("Expected the earlier leg first, got start %v", rows[0].Start)
	}
}
