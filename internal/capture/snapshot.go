package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SnapshotSource polls an IP camera's JPEG snapshot endpoint.
type SnapshotSource struct {
	url      string
	username string
	password string
	interval time.Duration
	width    int
	client   *http.Client

	seq  int
	last time.Time
}

func NewSnapshotSource(url, username, password string, interval time.Duration, width int) *SnapshotSource {
	return &SnapshotSource{
		url:      url,
		username: username,
		password: password,
		interval: interval,
		width:    width,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Next waits until the poll interval has elapsed since the previous
// request, then fetches one snapshot. It never returns io.EOF.
func (s *SnapshotSource) Next(ctx context.Context) (Frame, error) {
	if !s.last.IsZero() && s.interval > 0 {
		if wait := s.interval - time.Since(s.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Frame{}, ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.last = time.Now()

	data, err := s.fetch(ctx)
	if err != nil {
		return Frame{}, err
	}
	frame, err := Normalize(data, s.width)
	if err != nil {
		return Frame{}, err
	}
	s.seq++
	frame.Seq = s.seq
	frame.CapturedAt = s.last
	return frame, nil
}

// Capture fetches a single snapshot without waiting.
func (s *SnapshotSource) Capture(ctx context.Context) (Frame, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return Frame{}, err
	}
	frame, err := Normalize(data, s.width)
	if err != nil {
		return Frame{}, err
	}
	frame.CapturedAt = time.Now()
	return frame, nil
}

func (s *SnapshotSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
