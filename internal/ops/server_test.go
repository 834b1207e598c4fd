package ops

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServer_Health(t *testing.T) {
	srv := httptest.NewServer(NewServer("", NewTracker(), nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected ok, got %s", health.Status)
	}
	if health.UpSince.IsZero() {
		t.Error("Expected up_since to be set")
	}
}

func TestServer_StatusReflectsTracker(t *testing.T) {
	tracker := NewTracker()
	srv := httptest.NewServer(NewServer("", tracker, nil).Router())
	defer srv.Close()

	tracker.StartRun("legs", "run-1", 10)
	tracker.UnitDone("legs")
	tracker.UnitDone("legs")
	tracker.UnitFailed("legs")
	tracker.StartRun("positions", "run-2", 4)
	tracker.FinishRun("positions", errors.New("2 units failed"))

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(status.Jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(status.Jobs))
	}
	legs, positions := status.Jobs[0], status.Jobs[1]
	if legs.Job != "legs" || positions.Job != "positions" {
		t.Fatalf("Expected jobs sorted by name, got %s/%s", legs.Job, positions.Job)
	}
	if legs.Done != 2 || legs.Failed != 1 || legs.Total != 10 {
		t.Errorf("Unexpected legs progress: %+v", legs)
	}
	if legs.State != RunStateRunning {
		t.Errorf("Expected legs still running, got %s", legs.State)
	}
	if positions.State != RunStateFailed {
		t.Errorf("Expected positions failed, got %s", positions.State)
	}
	if positions.RunID != "run-2" {
		t.Errorf("Expected run-2, got %s", positions.RunID)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewServer("", NewTracker(), nil).Router())
	defer srv.Close()

	// One request through the middleware so the request counter has a series.
	if _, err := http.Get(srv.URL + "/health"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(string(body), "privatejets_http_requests_total") {
		t.Error("Expected pipeline metrics in the exposition")
	}
}

func TestTracker_NilIsSafe(t *testing.T) {
	var tracker *Tracker
	tracker.StartRun("legs", "run-1", 1)
	tracker.UnitDone("legs")
	tracker.UnitFailed("legs")
	tracker.FinishRun("legs", nil)
	if got := tracker.Snapshot(); got != nil {
		t.Errorf("Expected nil snapshot, got %v", got)
	}
}
