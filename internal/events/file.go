package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/google/renameio"
)

// FileLog keeps events in a JSON array that is rewritten in full on every append.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates a log backed by the JSON file at path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path returns the backing file path.
func (l *FileLog) Path() string {
	return l.path
}

// List reads every event. A missing file yields an empty list.
func (l *FileLog) List(_ context.Context) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Append adds e to the log and atomically replaces the file.
func (l *FileLog) Append(_ context.Context, e Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.read()
	if err != nil {
		return err
	}
	list = append(list, e)

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode event log: %w", err)
	}
	if err := renameio.WriteFile(l.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write event log %s: %w", l.path, err)
	}
	return nil
}

func (l *FileLog) read() ([]Event, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event log %s: %w", l.path, err)
	}

	var list []Event
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLog, l.path, err)
	}
	for i, e := range list {
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s: entry %d has unknown tipo %q", ErrCorruptLog, l.path, i, e.Kind)
		}
	}
	if list == nil {
		list = []Event{}
	}
	return list, nil
}
