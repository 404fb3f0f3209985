package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
)

const faceEndpoint = "/embed/face"

// Client calls the embedding server's face endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a detector client. An empty baseURL uses the default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultEmbeddingURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// faceDetection is one face as returned by the server
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Detect posts the frame and converts the response into detections.
// Faces with a malformed bounding box or no embedding are dropped.
func (c *Client) Detect(ctx context.Context, frame capture.Frame) ([]Detection, error) {
	body, err := c.postImage(ctx, faceEndpoint, frame.Data)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	dets := make([]Detection, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.BBox) != 4 || len(f.Embedding) == 0 {
			log.Printf("detector: dropping face %d (bbox=%d values, embedding=%d values)", f.FaceIndex, len(f.BBox), len(f.Embedding))
			continue
		}
		bbox := [4]float64{f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3]}
		if !facematch.ValidBBox(bbox) {
			log.Printf("detector: dropping face %d with inverted bbox %v", f.FaceIndex, f.BBox)
			continue
		}
		dets = append(dets, Detection{BBox: bbox, Embedding: f.Embedding, DetScore: f.DetScore})
	}
	return dets, nil
}

// postImage sends the image as the "file" field of a multipart form.
func (c *Client) postImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
