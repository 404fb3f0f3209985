package zone

import "sort"

// State is the lifecycle stage of a track.
type State string

const (
	StateNew       State = "NEW"
	StateObserving State = "OBSERVING"
	StateCrossed   State = "CROSSED"
)

// Track follows one identity until it crosses.
type Track struct {
	ID          int    `json:"id"`
	Identity    string `json:"identity"`
	InitialZone Zone   `json:"-"`
	CurrentZone Zone   `json:"-"`
	Crossed     bool   `json:"crossed"`
}

// State derives the lifecycle stage from the track fields.
func (t Track) State() State {
	switch {
	case t.Crossed:
		return StateCrossed
	case t.InitialZone == ZoneUnknown:
		return StateNew
	default:
		return StateObserving
	}
}

// TrackStore owns all tracks and the id counter.
// It is not safe for concurrent use; the owner serializes access.
type TrackStore struct {
	tracks map[int]*Track
	live   map[string]int // identity -> id of its uncrossed track
	nextID int
}

func NewTrackStore() *TrackStore {
	return &TrackStore{
		tracks: make(map[int]*Track),
		live:   make(map[string]int),
	}
}

// FindOrCreate returns the uncrossed track of identity, allocating a new
// one when none exists. Ids are never reused.
func (s *TrackStore) FindOrCreate(identity string) int {
	if id, ok := s.live[identity]; ok {
		if t := s.tracks[id]; t != nil && !t.Crossed {
			return id
		}
		delete(s.live, identity)
	}
	s.nextID++
	id := s.nextID
	s.tracks[id] = &Track{ID: id, Identity: identity}
	s.live[identity] = id
	return id
}

// Get returns the live track with the given id.
func (s *TrackStore) Get(id int) (*Track, bool) {
	t, ok := s.tracks[id]
	return t, ok
}

// markCrossed drops the identity from the live index so the next sighting
// starts a fresh track.
func (s *TrackStore) markCrossed(t *Track) {
	t.Crossed = true
	if id, ok := s.live[t.Identity]; ok && id == t.ID {
		delete(s.live, t.Identity)
	}
}

// Sweep removes every crossed track and returns how many were removed.
func (s *TrackStore) Sweep() int {
	removed := 0
	for id, t := range s.tracks {
		if t.Crossed {
			delete(s.tracks, id)
			removed++
		}
	}
	return removed
}

func (s *TrackStore) Len() int {
	return len(s.tracks)
}

// Tracks returns a copy of all tracks sorted by id.
func (s *TrackStore) Tracks() []Track {
	out := make([]Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
