package zone

import "github.com/Vallit0/asistencia-senoriales/internal/events"

// Tracker applies the crossing rule to the tracks of a TrackStore.
//
// A track's first sighting pins its baseline zone. Later sightings are
// compared against that baseline, not against the previous frame: moving out
// of the center into a side zone is an ENTRADA, moving from a side zone into
// the center is a SALIDA. Side-to-side moves never cross. A crossed track is
// terminal until the next Sweep removes it.
type Tracker struct {
	store  *TrackStore
	bounds Boundaries
}

// NewTracker returns a tracker over store. A nil store gets a fresh one.
func NewTracker(store *TrackStore, bounds Boundaries) *Tracker {
	if store == nil {
		store = NewTrackStore()
	}
	return &Tracker{store: store, bounds: bounds.Clamp()}
}

func (t *Tracker) Store() *TrackStore {
	return t.store
}

func (t *Tracker) Boundaries() Boundaries {
	return t.bounds
}

// SetBoundaries replaces the boundaries, clamping invalid ones.
func (t *Tracker) SetBoundaries(b Boundaries) Boundaries {
	t.bounds = b.Clamp()
	return t.bounds
}

// Observe records a sighting at centerX for the given track and returns the
// crossing it completes, if any. Unknown track ids are ignored.
func (t *Tracker) Observe(trackID int, centerX float64) (events.Kind, bool) {
	tr, ok := t.store.Get(trackID)
	if !ok || tr.Crossed {
		return "", false
	}

	zone := t.bounds.Classify(centerX)
	if tr.InitialZone == ZoneUnknown {
		tr.InitialZone = zone
		tr.CurrentZone = zone
		return "", false
	}
	tr.CurrentZone = zone

	switch {
	case tr.InitialZone == ZoneCenter && zone.IsSide():
		t.store.markCrossed(tr)
		return events.Entrada, true
	case tr.InitialZone.IsSide() && zone == ZoneCenter:
		t.store.markCrossed(tr)
		return events.Salida, true
	}
	return "", false
}

// ObserveIdentity finds or creates the live track of name and observes it.
func (t *Tracker) ObserveIdentity(name string, centerX float64) (int, events.Kind, bool) {
	id := t.store.FindOrCreate(name)
	kind, crossed := t.Observe(id, centerX)
	return id, kind, crossed
}

// Sweep removes crossed tracks from the store.
func (t *Tracker) Sweep() int {
	return t.store.Sweep()
}
