package types

// FileContribution is the reduction of one recording for one aircraft.
// Invariant: GroundSeconds <= TotalSeconds and MissionSeconds == TotalSeconds.
type FileContribution struct {
	Aircraft       string  `msgpack:"aircraft" json:"aircraft"`
	TotalSeconds   float64 `msgpack:"total_seconds" json:"total_seconds"`
	GroundSeconds  float64 `msgpack:"ground_seconds" json:"ground_seconds"`
	Flights        int     `msgpack:"flights" json:"flights"`
	Destroyed      int     `msgpack:"destroyed" json:"destroyed"`
	Mission        string  `msgpack:"mission" json:"mission"`
	MissionSeconds float64 `msgpack:"mission_seconds" json:"mission_seconds"`
}

// Mission is the time attributed to one mission for one aircraft.
type Mission struct {
	Name    string  `json:"name" yaml:"name"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// Aircraft is the aggregated usage of one aircraft across a batch.
// Published values are immutable; use Clone before handing them out.
type Aircraft struct {
	Name          string    `json:"name" yaml:"name"`
	TotalSeconds  float64   `json:"total_seconds" yaml:"total_seconds"`
	GroundSeconds float64   `json:"ground_seconds" yaml:"ground_seconds"`
	Flights       int       `json:"flights" yaml:"flights"`
	Destroyed     int       `json:"destroyed" yaml:"destroyed"`
	Missions      []Mission `json:"missions" yaml:"missions"`
}

// FlightSeconds returns the airborne share of TotalSeconds.
func (a Aircraft) FlightSeconds() float64 {
	return a.TotalSeconds - a.GroundSeconds
}

// Clone returns a deep copy.
func (a Aircraft) Clone() Aircraft {
	out := a
	out.Missions = make([]Mission, len(a.Missions))
	copy(out.Missions, a.Missions)
	return out
}
