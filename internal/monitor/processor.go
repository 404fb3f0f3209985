// Package monitor drives the attendance frame loop: it matches each detected
// face against the catalog and turns matches into ENTRADA/SALIDA events.
package monitor

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/dedup"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
	"github.com/Vallit0/asistencia-senoriales/internal/match"
	"github.com/Vallit0/asistencia-senoriales/internal/zone"
)

// Mode selects how matches become events.
type Mode string

const (
	// ModeSimple reports an ENTRADA per identity at most once per dedup window.
	ModeSimple Mode = "simple"
	// ModeZone reports ENTRADA/SALIDA when an identity crosses the zone lines.
	ModeZone Mode = "zone"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimple, ModeZone:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (expected simple or zone)", s)
}

// overlapIoU is the IoU above which two detections matching the same
// identity are treated as one face detected twice.
const overlapIoU = 0.3

// Options configure a Processor.
type Options struct {
	Mode            Mode
	Threshold       float64
	DedupWindow     time.Duration
	Boundaries      zone.Boundaries
	FrameWidth      int
	SweepInterval   int
	IndexMinSize    int
	IndexCandidates int
}

// Outcome describes what happened to one detection.
type Outcome struct {
	BBox      [4]float64    `json:"bbox"`
	CenterX   float64       `json:"center_x"`
	Match     match.Result  `json:"match"`
	Zone      string        `json:"zone,omitempty"`
	TrackID   int           `json:"track_id,omitempty"`
	Duplicate bool          `json:"duplicate,omitempty"`
	Event     *events.Event `json:"event,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// FrameResult is everything ProcessFrame produced for one frame.
type FrameResult struct {
	Frame    int            `json:"frame"`
	Outcomes []Outcome      `json:"outcomes"`
	Events   []events.Event `json:"events"`
	Swept    int            `json:"swept,omitempty"`
}

// Snapshot is a read-only view of the processor state.
type Snapshot struct {
	Mode         Mode            `json:"mode"`
	Frames       int             `json:"frames"`
	Threshold    float64         `json:"threshold"`
	CatalogSize  int             `json:"catalog_size"`
	Boundaries   zone.Boundaries `json:"boundaries"`
	FrameWidth   int             `json:"frame_width"`
	Tracks       []zone.Track    `json:"tracks"`
	DedupEntries int             `json:"dedup_entries"`
}

// Processor holds the per-frame state. All methods are serialized by one
// mutex so frames are never interleaved.
type Processor struct {
	mu      sync.Mutex
	opts    Options
	catalog *catalog.Catalog
	matcher *match.Matcher
	dedup   *dedup.Window
	tracker *zone.Tracker
	frames  int
}

// NewProcessor creates a processor over catalog c. A nil catalog is empty.
func NewProcessor(c *catalog.Catalog, opts Options) *Processor {
	if opts.Mode == "" {
		opts.Mode = ModeZone
	}
	p := &Processor{
		opts:    opts,
		dedup:   dedup.New(opts.DedupWindow),
		tracker: zone.NewTracker(zone.NewTrackStore(), opts.Boundaries),
	}
	p.setCatalog(c)
	return p
}

func (p *Processor) setCatalog(c *catalog.Catalog) {
	if c == nil {
		c, _ = catalog.New(nil)
	}
	p.catalog = c
	if p.opts.IndexMinSize > 0 {
		p.matcher = match.NewWithIndex(p.opts.Threshold, match.BuildIndex(c, p.opts.IndexMinSize, p.opts.IndexCandidates))
	} else {
		p.matcher = match.New(p.opts.Threshold)
	}
}

// SetCatalog swaps the catalog used for the following frames.
func (p *Processor) SetCatalog(c *catalog.Catalog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setCatalog(c)
}

// Catalog returns the catalog currently in use.
func (p *Processor) Catalog() *catalog.Catalog {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog
}

func (p *Processor) Mode() Mode {
	return p.opts.Mode
}

// SetBoundaries replaces the zone lines. Invalid lines are clamped.
func (p *Processor) SetBoundaries(b zone.Boundaries) zone.Boundaries {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.SetBoundaries(b)
}

// NudgeBoundary moves one zone line by delta pixels within its limits.
func (p *Processor) NudgeBoundary(line zone.Line, delta float64) zone.Boundaries {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.SetBoundaries(p.tracker.Boundaries().Nudge(line, delta, p.opts.FrameWidth))
}

func (p *Processor) Boundaries() zone.Boundaries {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Boundaries()
}

// Snapshot returns a copy of the current state.
func (p *Processor) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Mode:         p.opts.Mode,
		Frames:       p.frames,
		Threshold:    p.matcher.Threshold(),
		CatalogSize:  p.catalog.Len(),
		Boundaries:   p.tracker.Boundaries(),
		FrameWidth:   p.opts.FrameWidth,
		Tracks:       p.tracker.Store().Tracks(),
		DedupEntries: p.dedup.Len(),
	}
}

// ProcessFrame matches every detection of one frame and returns the events
// it produces, in detection order. When one identity matches several
// detections, only the highest scoring one is applied.
func (p *Processor) ProcessFrame(dets []detector.Detection, now time.Time) FrameResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames++
	res := FrameResult{Frame: p.frames, Outcomes: make([]Outcome, len(dets))}

	best := make(map[string]int) // identity -> index of its best detection
	for i, det := range dets {
		out := &res.Outcomes[i]
		out.BBox = det.BBox
		out.CenterX = det.CenterX()

		if len(det.Embedding) == 0 {
			out.Error = "empty embedding"
			log.Printf("frame %d: skipping detection %d: empty embedding", p.frames, i)
			continue
		}

		out.Match = p.matcher.Match(det.Embedding, p.catalog)
		if out.Match.Skipped > 0 {
			log.Printf("frame %d: detection %d: skipped %d catalog entries with a different embedding size", p.frames, i, out.Match.Skipped)
		}

		name, ok := out.Match.Identity()
		if !ok {
			continue
		}
		if j, seen := best[name]; !seen || out.Match.Score > res.Outcomes[j].Match.Score {
			best[name] = i
		}
	}

	for i := range res.Outcomes {
		out := &res.Outcomes[i]
		name, ok := out.Match.Identity()
		if !ok {
			continue
		}
		if j := best[name]; j != i {
			out.Duplicate = true
			if facematch.ComputeIoU(out.BBox, res.Outcomes[j].BBox) < overlapIoU {
				log.Printf("frame %d: %s matched two separate faces (scores %.2f and %.2f)", p.frames, name, out.Match.Score, res.Outcomes[j].Match.Score)
			}
			continue
		}

		if e, ok := p.apply(out, name, now); ok {
			out.Event = &e
			res.Events = append(res.Events, e)
		}
	}

	if p.opts.SweepInterval > 0 && p.frames%p.opts.SweepInterval == 0 {
		res.Swept = p.tracker.Sweep()
		p.dedup.Prune(now)
	}

	return res
}

func (p *Processor) apply(out *Outcome, name string, now time.Time) (events.Event, bool) {
	switch p.opts.Mode {
	case ModeSimple:
		if !p.dedup.ShouldReport(name, now) {
			return events.Event{}, false
		}
		return events.Event{Name: name, Kind: events.Entrada, Timestamp: now}, true
	default:
		out.Zone = p.tracker.Boundaries().Classify(out.CenterX).String()
		id, kind, crossed := p.tracker.ObserveIdentity(name, out.CenterX)
		out.TrackID = id
		if !crossed {
			return events.Event{}, false
		}
		return events.Event{Name: name, Kind: kind, Timestamp: now}, true
	}
}
