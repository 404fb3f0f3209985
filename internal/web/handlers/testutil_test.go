package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
	"github.com/Vallit0/asistencia-senoriales/internal/zone"
)

type emptySource struct{}

func (emptySource) Next(context.Context) (capture.Frame, error) {
	return capture.Frame{}, io.EOF
}

// stubDetector returns the same detections for every frame.
type stubDetector struct {
	dets []detector.Detection
}

func (d *stubDetector) Detect(context.Context, capture.Frame) ([]detector.Detection, error) {
	return d.dets, nil
}

type testEnv struct {
	store    *catalog.FileStore
	log      *events.FileLog
	detector *stubDetector
	runner   *monitor.Runner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	c, err := catalog.New([]catalog.Identity{
		{Name: "Ana", Embedding: []float32{1, 0, 0}},
		{Name: "Luis", Embedding: []float32{0, 1, 0}},
		{Name: "Ana", Embedding: []float32{0.9, 0.1, 0}},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	store := catalog.NewFileStore(filepath.Join(dir, "empleados.json"))
	if err := store.Save(context.Background(), c); err != nil {
		t.Fatalf("save catalog: %v", err)
	}

	p := monitor.NewProcessor(c, monitor.Options{
		Mode:          monitor.ModeZone,
		Threshold:     0.4,
		DedupWindow:   30 * time.Second,
		Boundaries:    zone.Boundaries{Left: 150, Right: 490},
		FrameWidth:    640,
		SweepInterval: 100,
	})
	log := events.NewFileLog(filepath.Join(dir, "asistencia_log.json"))
	det := &stubDetector{}

	return &testEnv{
		store:    store,
		log:      log,
		detector: det,
		runner:   monitor.NewRunner(emptySource{}, det, p, log, "test-run"),
	}
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
