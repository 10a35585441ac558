package aggregate

import (
	"testing"

	"github.com/justapithecus/flightlog/types"
)

func TestAircrafts_MergesAcrossFiles(t *testing.T) {
	contribs := []types.FileContribution{
		{Aircraft: "F-16C", TotalSeconds: 120, GroundSeconds: 50, Flights: 1, Mission: "Alpha", MissionSeconds: 120},
		{Aircraft: "F-16C", TotalSeconds: 300, GroundSeconds: 0, Flights: 1, Mission: "Bravo", MissionSeconds: 300},
	}

	got := Aircrafts(contribs)

	if len(got) != 1 {
		t.Fatalf("expected 1 aircraft, got %d", len(got))
	}
	a := got[0]
	if a.Name != "F-16C" || a.TotalSeconds != 420 || a.GroundSeconds != 50 || a.Flights != 2 {
		t.Errorf("aircraft = %+v, want F-16C 420/50/2", a)
	}
	if a.FlightSeconds() != 370 {
		t.Errorf("FlightSeconds = %v, want 370", a.FlightSeconds())
	}
	if len(a.Missions) != 2 || a.Missions[0] != (types.Mission{Name: "Alpha", Seconds: 120}) ||
		a.Missions[1] != (types.Mission{Name: "Bravo", Seconds: 300}) {
		t.Errorf("missions = %+v", a.Missions)
	}
}

func TestAircrafts_FirstSeenOrder(t *testing.T) {
	contribs := []types.FileContribution{
		{Aircraft: "Su-27", TotalSeconds: 10, Mission: "M1", MissionSeconds: 10},
		{Aircraft: "A-10C", TotalSeconds: 20, Mission: "M2", MissionSeconds: 20},
		{Aircraft: "Su-27", TotalSeconds: 5, Mission: "M2", MissionSeconds: 5},
		{Aircraft: "A-10C", TotalSeconds: 1, Mission: "M2", MissionSeconds: 1},
	}

	got := Aircrafts(contribs)

	if len(got) != 2 || got[0].Name != "Su-27" || got[1].Name != "A-10C" {
		t.Fatalf("order = %+v", got)
	}
	if len(got[1].Missions) != 1 || got[1].Missions[0].Seconds != 21 {
		t.Errorf("A-10C missions = %+v, want M2:21", got[1].Missions)
	}
	if len(got[0].Missions) != 2 || got[0].Missions[0].Name != "M1" {
		t.Errorf("Su-27 missions = %+v", got[0].Missions)
	}
}

func TestAircrafts_CaseSensitiveNames(t *testing.T) {
	got := Aircrafts([]types.FileContribution{
		{Aircraft: "f-16c", Mission: "x"},
		{Aircraft: "F-16C", Mission: "x"},
	})
	if len(got) != 2 {
		t.Errorf("names differing in case must stay distinct, got %d", len(got))
	}
}

func TestAircrafts_MissionSumMatchesTotal(t *testing.T) {
	contribs := []types.FileContribution{
		{Aircraft: "A", TotalSeconds: 1.5, Mission: "a", MissionSeconds: 1.5},
		{Aircraft: "A", TotalSeconds: 2.25, Mission: "b", MissionSeconds: 2.25},
		{Aircraft: "A", TotalSeconds: 4, Mission: "a", MissionSeconds: 4},
	}
	a := Aircrafts(contribs)[0]

	var sum float64
	for _, m := range a.Missions {
		sum += m.Seconds
	}
	if sum != a.TotalSeconds {
		t.Errorf("mission sum %v != total %v", sum, a.TotalSeconds)
	}
}

func TestAircrafts_Empty(t *testing.T) {
	got := Aircrafts(nil)
	if got == nil {
		t.Fatal("expected non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestResult_CopiesFailures(t *testing.T) {
	failures := []string{"a.zip.acmi: author not found"}
	res := Result(nil, failures)
	failures[0] = "mutated"

	if res.Failures[0] != "a.zip.acmi: author not found" {
		t.Error("Result must not alias the failure slice")
	}
	if res.Aircrafts == nil {
		t.Error("Aircrafts should be non-nil")
	}
}
