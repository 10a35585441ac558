package analyzer

import "github.com/justapithecus/flightlog/types"

// lifetime is the time-ordered run of samples of one object instance,
// from its first sample to its removal.
type lifetime struct {
	aircraft  string
	samples   []types.Sample
	removed   bool
	destroyed bool
}

// splitLifetimes groups samples by object instance. An id seen again after
// removal starts a new lifetime.
func splitLifetimes(samples []types.Sample) []*lifetime {
	var (
		all  []*lifetime
		open = make(map[string]*lifetime)
	)
	for _, s := range samples {
		lt, ok := open[s.ObjectID]
		if !ok {
			lt = &lifetime{}
			open[s.ObjectID] = lt
			all = append(all, lt)
		}
		lt.samples = append(lt.samples, s)
		if s.Aircraft != "" {
			lt.aircraft = s.Aircraft
		}
		if s.Destroyed {
			lt.destroyed = true
		}
		if s.Removed {
			lt.removed = true
			delete(open, s.ObjectID)
		}
	}

	for _, lt := range all {
		if lt.aircraft == "" {
			lt.aircraft = UnknownAircraft
		}
	}
	return all
}

type segments struct {
	total   float64
	ground  float64
	flights int
}

// StationaryGap is the longest interval, in seconds, that is classed by the
// motion of the sample closing it. A longer interval means the object wrote
// nothing in between and counts as stationary.
const StationaryGap = 60.0

// measure classifies each interval by the later sample's motion. Event and
// property-only samples carry no position and keep the previous class.
// Intervals longer than StationaryGap are stationary. The tail up to end
// repeats the last class unless the object was removed.
func (lt *lifetime) measure(end, threshold float64) segments {
	var (
		out     segments
		moving  bool
		runOpen bool
		runDur  float64
	)

	add := func(dt float64, isMoving bool) {
		if dt <= 0 {
			return
		}
		if runOpen && isMoving != moving {
			if moving && runDur > 0 {
				out.flights++
			}
			runDur = 0
		}
		moving, runOpen = isMoving, true
		runDur += dt

		out.total += dt
		if !isMoving {
			out.ground += dt
		}
	}

	for i := 1; i < len(lt.samples); i++ {
		prev, cur := lt.samples[i-1], lt.samples[i]
		dt := cur.Time - prev.Time
		class := cur.Motion > threshold
		switch {
		case dt > StationaryGap:
			class = false
		case cur.Removed || cur.Destroyed || cur.NoPosition:
			class = moving
		}
		add(dt, class)
	}

	if !lt.removed {
		last := lt.samples[len(lt.samples)-1]
		add(end-last.Time, moving)
	}

	if runOpen && moving && runDur > 0 {
		out.flights++
	}
	return out
}
