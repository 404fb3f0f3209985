package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
)

// Stats are the running counters of a Runner.
type Stats struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	Running     bool          `json:"running"`
	Frames      int           `json:"frames"`
	FrameErrors int           `json:"frame_errors"`
	StillFrames int           `json:"still_frames"`
	Detections  int           `json:"detections"`
	Matched     int           `json:"matched"`
	Entries     int           `json:"entries"`
	Exits       int           `json:"exits"`
	SinkErrors  int           `json:"sink_errors"`
	LastEvent   *events.Event `json:"last_event,omitempty"`
	FPS         float64       `json:"fps"`
}

// Runner pulls frames from a source, sends them to the detector and feeds
// the detections to the processor, appending every event to the sink.
type Runner struct {
	Broadcaster

	source     capture.Source
	detector   detector.Detector
	processor  *Processor
	sink       events.Sink
	frameWidth int
	still      *capture.StillFilter
	now        func() time.Time

	// catalogMu serializes catalog writers from read through save and swap.
	catalogMu sync.Mutex

	mu        sync.RWMutex
	stats     Stats
	lastFrame time.Time
	lastDets  []detector.Detection
}

// NewRunner wires a frame loop. runID tags the run; empty generates one.
func NewRunner(source capture.Source, det detector.Detector, p *Processor, sink events.Sink, runID string) *Runner {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Runner{
		source:     source,
		detector:   det,
		processor:  p,
		sink:       sink,
		frameWidth: p.opts.FrameWidth,
		now:        time.Now,
		stats:      Stats{RunID: runID},
	}
}

// SkipStillFrames makes Run drop frames that are within maxDistance hash
// bits of the last processed frame. Zero or less processes every frame.
func (r *Runner) SkipStillFrames(maxDistance int) {
	r.still = capture.NewStillFilter(maxDistance)
}

func (r *Runner) Processor() *Processor {
	return r.processor
}

func (r *Runner) RunID() string {
	return r.stats.RunID
}

// Stats returns a copy of the counters.
func (r *Runner) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.stats
	if s.LastEvent != nil {
		e := *s.LastEvent
		s.LastEvent = &e
	}
	return s
}

// Run processes frames until ctx is cancelled or the source is exhausted.
// Frame errors are logged and the frame is skipped.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.stats.Running = true
	r.stats.StartedAt = r.now()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.stats.Running = false
		r.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		frame, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.frameFailed("capture", err)
			continue
		}

		if !r.still.Changed(frame) {
			r.mu.Lock()
			r.stats.StillFrames++
			r.mu.Unlock()
			continue
		}

		if _, err := r.Step(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.frameFailed("detect", err)
		}
	}
}

func (r *Runner) frameFailed(stage string, err error) {
	r.mu.Lock()
	r.stats.FrameErrors++
	r.mu.Unlock()
	log.Printf("Warning: %s failed, skipping frame: %v", stage, err)
}

// Step runs one frame through detection and processing and records its events.
func (r *Runner) Step(ctx context.Context, frame capture.Frame) (FrameResult, error) {
	dets, err := r.detector.Detect(ctx, frame)
	if err != nil {
		return FrameResult{}, err
	}
	if r.frameWidth > 0 && frame.Width > 0 && frame.Width != r.frameWidth {
		for i := range dets {
			dets[i].BBox = facematch.ScaleBBox(dets[i].BBox, frame.Width, r.frameWidth)
		}
	}

	now := frame.CapturedAt
	if now.IsZero() {
		now = r.now()
	}
	res := r.processor.ProcessFrame(dets, now)

	for _, e := range res.Events {
		if err := r.sink.Append(ctx, e); err != nil {
			r.mu.Lock()
			r.stats.SinkErrors++
			r.mu.Unlock()
			log.Printf("Warning: failed to record %s for %s: %v", e.Kind, e.Name, err)
		}
		fmt.Printf("[%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Kind, e.Name)
		r.Send(e)
	}

	r.record(dets, res)
	return res, nil
}

func (r *Runner) record(dets []detector.Detection, res FrameResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.lastFrame.IsZero() {
		if dt := now.Sub(r.lastFrame).Seconds(); dt > 0 {
			r.stats.FPS = 1 / max(dt, 0.001)
		}
	}
	r.lastFrame = now
	r.lastDets = dets

	r.stats.Frames++
	r.stats.Detections += len(dets)
	for _, o := range res.Outcomes {
		if o.Match.Matched {
			r.stats.Matched++
		}
	}
	for i, e := range res.Events {
		switch e.Kind {
		case events.Entrada:
			r.stats.Entries++
		case events.Salida:
			r.stats.Exits++
		}
		last := res.Events[i]
		r.stats.LastEvent = &last
	}
}

// Enroll adds name to the catalog using the single face of the last
// processed frame, persists the catalog and activates it.
func (r *Runner) Enroll(ctx context.Context, name string, store catalog.Store) error {
	r.mu.RLock()
	dets := r.lastDets
	r.mu.RUnlock()

	det, err := detector.Single(dets)
	if err != nil {
		return err
	}

	r.catalogMu.Lock()
	defer r.catalogMu.Unlock()

	next, err := catalog.New(r.processor.Catalog().Identities())
	if err != nil {
		return err
	}
	if err := next.Enroll(name, [][]float32{det.Embedding}); err != nil {
		return err
	}
	if err := store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	r.processor.SetCatalog(next)
	return nil
}

// ReloadCatalog loads the catalog from store and activates it. On error the
// active catalog is kept.
func (r *Runner) ReloadCatalog(ctx context.Context, store catalog.Store) (*catalog.Catalog, error) {
	r.catalogMu.Lock()
	defer r.catalogMu.Unlock()

	c, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.processor.SetCatalog(c)
	return c, nil
}

// ResolveRunID returns id trimmed, or a fresh UUID when it is blank.
// Ids must fit the run_id column of the SQL event tables.
func ResolveRunID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString(), nil
	}
	if len(id) > constants.MaxRunIDLength {
		return "", fmt.Errorf("run id %q is longer than %d characters", id, constants.MaxRunIDLength)
	}
	return id, nil
}
