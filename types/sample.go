// Package types defines the shared data model of the flightlog engine.
//
//nolint:revive // types is a common Go package naming convention
package types

// Sample is one timestamped state observation of a tracked object.
// Samples are ordered by Time within a recording and carry no ordering
// guarantee across recordings.
type Sample struct {
	// Time is seconds since the start of the recording.
	Time float64 `msgpack:"time" json:"time"`
	// ObjectID is the decoder's identifier for the object instance.
	ObjectID string `msgpack:"object_id" json:"object_id"`
	// Aircraft is the aircraft type name (exact, case-sensitive).
	Aircraft string `msgpack:"aircraft" json:"aircraft"`
	// Motion is the magnitude of the position change in metres since the
	// previous sample of the same object. Zero when unchanged.
	Motion float64 `msgpack:"motion" json:"motion"`
	// Removed marks the object leaving the recording at Time.
	Removed bool `msgpack:"removed,omitempty" json:"removed,omitempty"`
	// Destroyed marks a destroyed event for the object at Time.
	Destroyed bool `msgpack:"destroyed,omitempty" json:"destroyed,omitempty"`
	// NoPosition marks an update that carried no position, such as a
	// property-only line. Motion is zero and says nothing about movement.
	NoPosition bool `msgpack:"no_position,omitempty" json:"no_position,omitempty"`
}

// Recording is the decoded form of one recording file.
type Recording struct {
	// Path is the file the recording was decoded from.
	Path string
	// Author is the recording author, the pilot whose aircraft are tracked.
	Author string
	// Title is the mission title from the recording header. May be empty.
	Title string
	// Mission is the reader's fallback mission name, usually derived from
	// the file name. Used when Title is empty.
	Mission string
	// Samples holds all samples for tracked objects, in time order.
	Samples []Sample
	// Start and End are the first and last frame times seen in the file.
	Start float64
	End   float64
}

// Duration returns the recorded time span.
func (r *Recording) Duration() float64 {
	if r == nil {
		return 0
	}
	return r.End - r.Start
}
