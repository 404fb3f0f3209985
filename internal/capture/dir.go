package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// IsImageFile reports whether the file name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns the image files of dir in lexical order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// DirSource replays the images of a directory as frames.
type DirSource struct {
	files []string
	width int
	pos   int
	now   func() time.Time
}

func NewDirSource(dir string, width int) (*DirSource, error) {
	files, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	return &DirSource{files: files, width: width, now: time.Now}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.files)
}

// Next returns the next frame, or io.EOF after the last file.
func (s *DirSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}

	path := s.files[s.pos]
	s.pos++

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the replay directory
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	frame, err := Normalize(data, s.width)
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	frame.Seq = s.pos
	frame.CapturedAt = s.now()
	return frame, nil
}
