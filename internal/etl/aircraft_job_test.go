package etl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/aircraft"
	"github.com/jorgecardleitao/private-jets/internal/ops"
)

func TestAircraftJobPublishesDatedSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/db-current/A.js" {
			w.Write([]byte(`{"835AF":["N835AF","GLF5",null,"Gulfstream G550"]}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := aircraft.NewRegistryClient(1_000_000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	client.BaseURL = srv.URL
	client.HTTP = srv.Client()

	store := setupTestStore(t)
	tracker := ops.NewTracker()
	job := NewAircraftJob(store, client, nil, tracker)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	dates, err := aircraft.SnapshotDates(context.Background(), store)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(dates))
	}
	today := time.Now().UTC().Format("2006-01-02")
	if got := dates[0].Format("2006-01-02"); got != today {
		t.Errorf("Expected a snapshot dated %s, got %s", today, got)
	}

	snapshot, err := aircraft.ReadSnapshot(context.Background(), store, dates[0])
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	row, ok := snapshot["a835af"]
	if !ok {
		t.Fatalf("Expected a835af in the snapshot, got %v", snapshot)
	}
	if row.TailNumber != "N835AF" || row.Country != "United States" {
		t.Errorf("Unexpected registry row: %+v", row)
	}

	runs := tracker.Snapshot()
	if len(runs) != 1 || runs[0].State != ops.RunStateDone || runs[0].Done != 1 {
		t.Errorf("Unexpected tracker state: %+v", runs)
	}
}
