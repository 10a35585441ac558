// Package aggregate merges per-file contributions into per-aircraft totals.
package aggregate

import "github.com/justapithecus/flightlog/types"

// Aircrafts merges contributions in batch order. Aircraft appear in the
// order first seen, missions likewise within each aircraft. The result is
// never nil.
func Aircrafts(contribs []types.FileContribution) []types.Aircraft {
	out := make([]types.Aircraft, 0)
	index := make(map[string]int)
	missions := make(map[string]map[string]int)

	for _, c := range contribs {
		i, ok := index[c.Aircraft]
		if !ok {
			i = len(out)
			index[c.Aircraft] = i
			missions[c.Aircraft] = make(map[string]int)
			out = append(out, types.Aircraft{Name: c.Aircraft, Missions: []types.Mission{}})
		}

		a := &out[i]
		a.TotalSeconds += c.TotalSeconds
		a.GroundSeconds += c.GroundSeconds
		a.Flights += c.Flights
		a.Destroyed += c.Destroyed

		mi, ok := missions[c.Aircraft][c.Mission]
		if !ok {
			mi = len(a.Missions)
			missions[c.Aircraft][c.Mission] = mi
			a.Missions = append(a.Missions, types.Mission{Name: c.Mission})
		}
		a.Missions[mi].Seconds += c.MissionSeconds
	}
	return out
}

// Result builds an AnalysisResult from per-file contributions and failure
// messages, both in batch order.
func Result(contribs []types.FileContribution, failures []string) types.AnalysisResult {
	f := make([]string, len(failures))
	copy(f, failures)
	return types.AnalysisResult{
		Aircrafts: Aircrafts(contribs),
		Failures:  f,
	}
}
