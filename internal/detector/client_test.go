package detector

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
)

func newFaceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/embed/face" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if string(data) != "jpeg-bytes" {
				t.Errorf("unexpected upload %q", data)
			}
			if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("unexpected part content type %q", ct)
			}
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func TestClient_Detect(t *testing.T) {
	server := newFaceServer(t, http.StatusOK, `{
		"faces_count": 3,
		"model": "buffalo_l",
		"faces": [
			{"face_index": 0, "dim": 3, "embedding": [0.1, 0.2, 0.3], "bbox": [100, 50, 200, 180], "det_score": 0.91},
			{"face_index": 1, "dim": 3, "embedding": [0.3, 0.2, 0.1], "bbox": [10, 10], "det_score": 0.8},
			{"face_index": 2, "dim": 3, "embedding": [0.5, 0.5, 0.5], "bbox": [400, 60, 380, 160], "det_score": 0.7}
		]
	}`)
	defer server.Close()

	client := NewClient(server.URL + "/")
	dets, err := client.Detect(context.Background(), capture.Frame{Data: []byte("jpeg-bytes")})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(dets) != 1 {
		t.Fatalf("expected 1 valid detection, got %d", len(dets))
	}
	d := dets[0]
	if d.BBox != [4]float64{100, 50, 200, 180} {
		t.Errorf("unexpected bbox %v", d.BBox)
	}
	if d.CenterX() != 150 {
		t.Errorf("expected center 150, got %v", d.CenterX())
	}
	if len(d.Embedding) != 3 || d.DetScore != 0.91 {
		t.Errorf("unexpected detection %+v", d)
	}
}

func TestClient_DetectNoFaces(t *testing.T) {
	server := newFaceServer(t, http.StatusOK, `{"faces_count": 0, "faces": [], "model": "buffalo_l"}`)
	defer server.Close()

	dets, err := NewClient(server.URL).Detect(context.Background(), capture.Frame{Data: []byte("jpeg-bytes")})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(dets) != 0 {
		t.Errorf("expected no detections, got %d", len(dets))
	}
}

func TestClient_DetectServerError(t *testing.T) {
	server := newFaceServer(t, http.StatusInternalServerError, "model not loaded")
	defer server.Close()

	_, err := NewClient(server.URL).Detect(context.Background(), capture.Frame{Data: []byte("jpeg-bytes")})
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestClient_DetectBadJSON(t *testing.T) {
	server := newFaceServer(t, http.StatusOK, "{")
	defer server.Close()

	if _, err := NewClient(server.URL).Detect(context.Background(), capture.Frame{Data: []byte("jpeg-bytes")}); err == nil {
		t.Error("expected parse error")
	}
}

func TestSingle(t *testing.T) {
	one := Detection{Embedding: []float32{1}}

	got, err := Single([]Detection{one})
	if err != nil || len(got.Embedding) != 1 {
		t.Errorf("Single(one) = %v, %v", got, err)
	}

	for _, dets := range [][]Detection{nil, {one, one}} {
		if _, err := Single(dets); !errors.Is(err, catalog.ErrEnrollmentAmbiguous) {
			t.Errorf("Single(%d dets): expected ErrEnrollmentAmbiguous, got %v", len(dets), err)
		}
	}
}

func TestEmbeddings(t *testing.T) {
	dets := []Detection{{Embedding: []float32{1, 2}}, {Embedding: []float32{3, 4}}}
	embs := Embeddings(dets)
	if len(embs) != 2 || embs[1][0] != 3 {
		t.Errorf("unexpected embeddings %v", embs)
	}
}
