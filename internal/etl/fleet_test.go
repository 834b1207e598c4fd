package etl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/aircraft"
	"github.com/jorgecardleitao/private-jets/internal/common"
	"github.com/jorgecardleitao/private-jets/internal/models"
	"github.com/jorgecardleitao/private-jets/internal/storage"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	return storage.NewStore(nil, storage.NewDisk(t.TempDir()))
}

func newTestFleet(t *testing.T, store *storage.Store, country string) *Fleet {
	t.Helper()
	registry := aircraft.NewRegistryService(store, common.NewCacheService(60, 120))
	return NewFleet(store, registry, country)
}

func writeTestSnapshot(t *testing.T, store *storage.Store, date time.Time, rows []models.Aircraft) {
	t.Helper()
	if err := aircraft.WriteSnapshot(context.Background(), store, date, rows); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

var (
	danishJet = models.Aircraft{
		IcaoNumber:     "458d6b",
		TailNumber:     "OY-EUR",
		TypeDesignator: "GLF5",
		Model:          "Gulfstream G550",
		Country:        "Denmark",
	}
	americanJet = models.Aircraft{
		IcaoNumber:     "a835af",
		TailNumber:     "N835AF",
		TypeDesignator: "GLF5",
		Model:          "Gulfstream G550",
		Country:        "United States",
	}
	airliner = models.Aircraft{
		IcaoNumber:     "45ac2d",
		TailNumber:     "OY-JTT",
		TypeDesignator: "A320",
		Model:          "Airbus A320",
		Country:        "Denmark",
	}
)

func TestFleetAtUsesNewestSnapshotBeforeMonthEnd(t *testing.T) {
	store := setupTestStore(t)
	writeTestSnapshot(t, store, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		[]models.Aircraft{danishJet})
	writeTestSnapshot(t, store, time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
		[]models.Aircraft{danishJet, americanJet})
	fleet := newTestFleet(t, store, "")

	october, err := fleet.At(context.Background(), time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(october) != 1 {
		t.Fatalf("Expected 1 jet in October, got %d", len(october))
	}

	november, err := fleet.At(context.Background(), time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(november) != 2 {
		t.Fatalf("Expected 2 jets in November, got %d", len(november))
	}

	// Months older than every snapshot fall back to the oldest one.
	june, err := fleet.At(context.Background(), time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(june) != 1 {
		t.Fatalf("Expected 1 jet in June, got %d", len(june))
	}
}

func TestFleetAtFiltersModelAndCountry(t *testing.T) {
	store := setupTestStore(t)
	writeTestSnapshot(t, store, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		[]models.Aircraft{danishJet, americanJet, airliner})

	worldwide, err := newTestFleet(t, store, "").At(context.Background(),
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(worldwide) != 2 {
		t.Fatalf("Expected 2 jets worldwide, got %d", len(worldwide))
	}
	if _, ok := worldwide[airliner.IcaoNumber]; ok {
		t.Error("Expected the airliner to be excluded from the fleet")
	}

	danish, err := newTestFleet(t, store, "Denmark").At(context.Background(),
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(danish) != 1 {
		t.Fatalf("Expected 1 Danish jet, got %d", len(danish))
	}
	if _, ok := danish["458d6b"]; !ok {
		t.Error("Expected 458d6b in the Danish fleet")
	}
}

func TestFleetAtErrorsWithoutSnapshots(t *testing.T) {
	fleet := newTestFleet(t, setupTestStore(t), "")

	_, err := fleet.At(context.Background(), time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("Expected an error when no snapshots are stored")
	}
	if !strings.Contains(err.Error(), "aircraft job") {
		t.Errorf("Expected the error to point at the aircraft job, got %v", err)
	}
}
