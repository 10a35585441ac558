package lode

import (
	"errors"
	"testing"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// sharedFactory returns a StoreFactory that always returns the given store.
// Write and read datasets then share the same in-memory state.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func sampleReport(sessionID string, started time.Time) *Report {
	return &Report{
		SessionID: sessionID,
		Reader:    "tacview",
		Outcome:   types.OutcomeCompletedWithFailures,
		Progress:  types.Progress{Successful: 2, Failed: 1, Total: 3},
		Result: types.AnalysisResult{
			Aircrafts: []types.Aircraft{
				{
					Name: "F-16C", TotalSeconds: 420, GroundSeconds: 50, Flights: 2,
					Missions: []types.Mission{{Name: "A", Seconds: 120}, {Name: "B", Seconds: 300}},
				},
				{Name: "AV-8B", TotalSeconds: 60, GroundSeconds: 60, Missions: []types.Mission{{Name: "C", Seconds: 60}}},
			},
			Failures: []string{"/logs/C.zip.acmi: corrupt archive"},
		},
		Metrics: metrics.Snapshot{
			SessionsStarted: 1,
			FilesAnalyzed:   2,
			FilesFailed:     1,
			FailedByKind:    map[string]int64{"malformed": 1},
			StorageBackend:  BackendMemory,
			Reader:          "tacview",
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

func TestWriteAndQueryLatestReport(t *testing.T) {
	store := lode.NewMemory()
	ds, err := NewDataset(DefaultDataset, sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}

	collector := metrics.NewCollector("tacview", BackendMemory, "")
	w := NewWriter(ds, DefaultDataset, collector)

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	path, err := w.Write(t.Context(), sampleReport("sess-1", started))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if want := "flightlog/reader=tacview/day=2026-03-14/session_id=sess-1"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if got := collector.Snapshot().ReportWriteSuccess; got != 1 {
		t.Errorf("ReportWriteSuccess = %d, want 1", got)
	}

	readDS, err := NewDataset(DefaultDataset, sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	got, err := QueryLatestReport(t.Context(), readDS, "", "")
	if err != nil {
		t.Fatalf("QueryLatestReport failed: %v", err)
	}

	if got.SessionID != "sess-1" || got.Reader != "tacview" {
		t.Errorf("identity = %q/%q", got.SessionID, got.Reader)
	}
	if got.Outcome != types.OutcomeCompletedWithFailures {
		t.Errorf("Outcome = %q", got.Outcome)
	}
	if got.Progress != (types.Progress{Successful: 2, Failed: 1, Total: 3}) {
		t.Errorf("Progress = %+v", got.Progress)
	}
	if !got.StartedAt.Equal(started) || got.Duration() != 1500*time.Millisecond {
		t.Errorf("times = %v / %v", got.StartedAt, got.Duration())
	}

	if len(got.Result.Aircrafts) != 2 {
		t.Fatalf("aircraft count = %d, want 2", len(got.Result.Aircrafts))
	}
	f16 := got.Result.Aircrafts[0]
	if f16.Name != "F-16C" || f16.TotalSeconds != 420 || f16.GroundSeconds != 50 || f16.Flights != 2 {
		t.Errorf("aircraft[0] = %+v", f16)
	}
	if len(f16.Missions) != 2 || f16.Missions[0].Name != "A" || f16.Missions[1].Seconds != 300 {
		t.Errorf("aircraft[0].Missions = %+v", f16.Missions)
	}
	if got.Result.Aircrafts[1].Name != "AV-8B" {
		t.Errorf("aircraft[1] = %q, want AV-8B", got.Result.Aircrafts[1].Name)
	}
	if len(got.Result.Failures) != 1 || got.Result.Failures[0] != "/logs/C.zip.acmi: corrupt archive" {
		t.Errorf("Failures = %v", got.Result.Failures)
	}

	if got.Metrics.FilesAnalyzed != 2 || got.Metrics.FailedByKind["malformed"] != 1 {
		t.Errorf("Metrics = %+v", got.Metrics)
	}
	if got.Metrics.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q", got.Metrics.StorageBackend)
	}
}

func TestQueryLatestReport_Filters(t *testing.T) {
	store := lode.NewMemory()
	ds, err := NewDataset(DefaultDataset, sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	w := NewWriter(ds, DefaultDataset, nil)

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"sess-a", "sess-ab"} {
		if _, err := w.Write(t.Context(), sampleReport(id, started)); err != nil {
			t.Fatalf("Write(%s) failed: %v", id, err)
		}
	}

	tests := []struct {
		name      string
		sessionID string
		reader    string
		want      string
		wantErr   error
	}{
		{"latest", "", "", "sess-ab", nil},
		{"exact session", "sess-a", "", "sess-a", nil},
		{"reader", "", "tacview", "sess-ab", nil},
		{"unknown session", "sess-zz", "", "", ErrNoReportFound},
		{"unknown reader", "", "other", "", ErrNoReportFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QueryLatestReport(t.Context(), ds, tt.sessionID, tt.reader)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("QueryLatestReport failed: %v", err)
			}
			if got.SessionID != tt.want {
				t.Errorf("SessionID = %q, want %q", got.SessionID, tt.want)
			}
		})
	}
}

func TestQueryLatestReport_Empty(t *testing.T) {
	ds, err := NewDataset(DefaultDataset, lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	if _, err := QueryLatestReport(t.Context(), ds, "", ""); !errors.Is(err, ErrNoReportFound) {
		t.Errorf("err = %v, want ErrNoReportFound", err)
	}
}

func TestWriter_RequiresIdentity(t *testing.T) {
	ds, err := NewDataset(DefaultDataset, lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	w := NewWriter(ds, DefaultDataset, nil)
	r := sampleReport("", time.Now())
	if _, err := w.Write(t.Context(), r); err == nil {
		t.Error("expected error for missing session id")
	}
}

func TestWriteAndQuery_FSBackend(t *testing.T) {
	ds, err := Open(t.Context(), Options{Backend: BackendFS, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	w := NewWriter(ds, DefaultDataset, nil)
	if _, err := w.Write(t.Context(), sampleReport("sess-fs", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := QueryLatestReport(t.Context(), ds, "sess-fs", "tacview")
	if err != nil {
		t.Fatalf("QueryLatestReport failed: %v", err)
	}
	// JSONL round trip turns numbers into float64.
	if got.Result.Aircrafts[0].Flights != 2 || got.Progress.Total != 3 {
		t.Errorf("decoded = %+v / %+v", got.Result.Aircrafts[0], got.Progress)
	}
}
