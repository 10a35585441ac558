package tacview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/justapithecus/flightlog/types"
)

const (
	// metresPerDegree is the length of one degree of latitude.
	metresPerDegree = 111320.0
	// maxLineBytes bounds a single logical ACMI line.
	maxLineBytes = 4 << 20
	// ctxCheckInterval is the number of lines between cancellation checks.
	ctxCheckInterval = 4096
)

// object is the decode state of one recorded object.
type object struct {
	name   string
	pilot  string
	hasPos bool
	lon    float64
	lat    float64
	alt    float64
	// seen is set once the object wrote a line; lastLine is the frame time
	// of that line.
	seen     bool
	lastLine float64
}

// decoder holds the state of a single ACMI stream pass.
type decoder struct {
	override string
	author   string
	title    string

	objects map[string]*object
	samples []types.Sample

	now      float64
	prev     float64
	start    float64
	sawFrame bool
	line     int
}

func newDecoder(pilot string) *decoder {
	return &decoder{
		override: pilot,
		objects:  make(map[string]*object),
	}
}

// target is the pilot name whose objects are tracked.
func (d *decoder) target() string {
	if d.override != "" {
		return d.override
	}
	return d.author
}

func (d *decoder) run(ctx context.Context, src io.Reader) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var pending strings.Builder
	for sc.Scan() {
		d.line++
		if d.line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := sc.Text()
		if d.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		// A trailing backslash continues the logical line.
		if strings.HasSuffix(text, `\`) {
			pending.WriteString(strings.TrimSuffix(text, `\`))
			pending.WriteByte('\n')
			continue
		}
		if pending.Len() > 0 {
			pending.WriteString(text)
			text = pending.String()
			pending.Reset()
		}

		if err := d.handle(strings.TrimRight(text, "\r")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrMalformed, d.line, err)
	}
	if pending.Len() > 0 {
		if err := d.handle(pending.String()); err != nil {
			return err
		}
	}

	if d.target() == "" {
		return ErrNoAuthor
	}
	d.holdUntilEnd()
	return nil
}

func (d *decoder) handle(line string) error {
	switch {
	case line == "", strings.HasPrefix(line, "//"):
		return nil
	case strings.HasPrefix(line, "FileType="), strings.HasPrefix(line, "FileVersion="):
		return nil
	case strings.HasPrefix(line, "#"):
		return d.frame(line[1:])
	case strings.HasPrefix(line, "-"):
		return d.remove(line[1:])
	case strings.HasPrefix(line, "0,"):
		d.global(splitProps(line[2:]))
		return nil
	}

	id, rest, ok := strings.Cut(line, ",")
	if !ok {
		return fmt.Errorf("%w: line %d: object line without properties", ErrMalformed, d.line)
	}
	if d.target() == "" {
		return ErrNoAuthor
	}
	return d.update(id, splitProps(rest))
}

func (d *decoder) frame(value string) error {
	t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%w: line %d: invalid frame time %q", ErrMalformed, d.line, value)
	}
	if !d.sawFrame {
		d.start = t
		d.sawFrame = true
	} else if t != d.now {
		d.prev = d.now
	}
	d.now = t
	return nil
}

func (d *decoder) global(props []string) {
	for _, prop := range props {
		key, value, ok := strings.Cut(prop, "=")
		if !ok {
			continue
		}
		switch key {
		case "Author":
			d.author = strings.TrimSpace(value)
		case "Title":
			d.title = strings.TrimSpace(value)
		case "Event":
			d.event(value)
		}
	}
}

// event handles "Kind|id|id...|text" global events.
func (d *decoder) event(value string) {
	parts := strings.Split(value, "|")
	if len(parts) < 2 || parts[0] != "Destroyed" {
		return
	}
	id := parts[1]
	obj, ok := d.objects[id]
	if !ok || !d.tracked(obj) {
		return
	}
	d.touch(id, obj)
	d.samples = append(d.samples, types.Sample{
		Time:      d.now,
		ObjectID:  id,
		Aircraft:  obj.name,
		Destroyed: true,
	})
}

func (d *decoder) remove(id string) error {
	id = strings.TrimSpace(id)
	obj, ok := d.objects[id]
	if !ok {
		return nil
	}
	delete(d.objects, id)
	if d.tracked(obj) {
		d.touch(id, obj)
		d.samples = append(d.samples, types.Sample{
			Time:     d.now,
			ObjectID: id,
			Aircraft: obj.name,
			Removed:  true,
		})
	}
	return nil
}

func (d *decoder) update(id string, props []string) error {
	obj, ok := d.objects[id]
	if !ok {
		obj = &object{}
		d.objects[id] = obj
	}

	var (
		motion float64
		hasT   bool
	)
	for _, prop := range props {
		key, value, ok := strings.Cut(prop, "=")
		if !ok {
			continue
		}
		switch key {
		case "T":
			m, err := obj.move(value)
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrMalformed, d.line, err)
			}
			motion += m
			hasT = true
		case "Name":
			obj.name = value
		case "Pilot":
			obj.pilot = value
		}
	}

	if !d.tracked(obj) {
		obj.seen, obj.lastLine = true, d.now
		return nil
	}
	d.touch(id, obj)
	d.samples = append(d.samples, types.Sample{
		Time:       d.now,
		ObjectID:   id,
		Aircraft:   obj.name,
		Motion:     motion,
		NoPosition: !hasT,
	})
	return nil
}

// touch records a line for a tracked object at the current frame. Tacview
// writes a line only when something changed, so when the object skipped the
// frames before this one it is held in place: a zero-motion sample at the
// previous frame marks the gap as stationary.
func (d *decoder) touch(id string, obj *object) {
	if obj.seen && obj.lastLine < d.prev {
		d.samples = append(d.samples, types.Sample{
			Time:     d.prev,
			ObjectID: id,
			Aircraft: obj.name,
		})
	}
	obj.seen, obj.lastLine = true, d.now
}

// holdUntilEnd closes the gaps of live tracked objects that wrote nothing
// in the final frames.
func (d *decoder) holdUntilEnd() {
	ids := make([]string, 0, len(d.objects))
	for id, obj := range d.objects {
		if obj.seen && obj.lastLine < d.now && d.tracked(obj) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		d.samples = append(d.samples, types.Sample{
			Time:     d.now,
			ObjectID: id,
			Aircraft: d.objects[id].name,
		})
	}
}

func (d *decoder) tracked(obj *object) bool {
	return obj.pilot != "" && obj.pilot == d.target()
}

// move applies a "lon|lat|alt[|...]" transform and returns the distance
// travelled in metres. Empty components keep their previous value.
func (o *object) move(value string) (float64, error) {
	parts := strings.Split(value, "|")
	if len(parts) < 3 {
		return 0, fmt.Errorf("transform %q has fewer than 3 components", value)
	}

	lon, lat, alt := o.lon, o.lat, o.alt
	for i, dst := range []*float64{&lon, &lat, &alt} {
		if parts[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, fmt.Errorf("transform component %q: %w", parts[i], err)
		}
		*dst = v
	}

	var moved float64
	if o.hasPos {
		moved = distance(o.lon, o.lat, o.alt, lon, lat, alt)
	}
	o.lon, o.lat, o.alt = lon, lat, alt
	o.hasPos = true
	return moved, nil
}

// distance is the equirectangular distance in metres between two points
// given in degrees and metres of altitude.
func distance(lon1, lat1, alt1, lon2, lat2, alt2 float64) float64 {
	midLat := (lat1 + lat2) / 2 * math.Pi / 180
	dx := (lon2 - lon1) * metresPerDegree * math.Cos(midLat)
	dy := (lat2 - lat1) * metresPerDegree
	dz := alt2 - alt1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// splitProps splits a property list on unescaped commas. A backslash
// escapes the following character.
func splitProps(s string) []string {
	var (
		props []string
		cur   strings.Builder
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == ',':
			props = append(props, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(props, cur.String())
}

func (d *decoder) recording() *types.Recording {
	// Held samples land at the previous frame after lines of the current one.
	sort.SliceStable(d.samples, func(i, j int) bool {
		return d.samples[i].Time < d.samples[j].Time
	})
	end := d.now
	if len(d.samples) > 0 && d.samples[len(d.samples)-1].Time > end {
		end = d.samples[len(d.samples)-1].Time
	}
	return &types.Recording{
		Author:  d.author,
		Title:   d.title,
		Samples: d.samples,
		Start:   d.start,
		End:     end,
	}
}
