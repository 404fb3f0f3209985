package events

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLog_ListMissing(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "asistencia_log.json"))

	list, err := log.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty log, got %d", len(list))
	}
}

func TestFileLog_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	log := NewFileLog(filepath.Join(t.TempDir(), "asistencia_log.json"))
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	want := []Event{
		{Name: "Ana", Kind: Entrada, Timestamp: base},
		{Name: "Luis", Kind: Entrada, Timestamp: base.Add(time.Minute)},
		{Name: "Ana", Kind: Salida, Timestamp: base.Add(time.Hour)},
	}
	for _, e := range want {
		if err := log.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].Kind != want[i].Kind || !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileLog_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "[{"},
		{"unknown kind", `[{"nombre":"A","tipo":"VISITA","timestamp":"2026-01-01T00:00:00Z"}]`},
		{"bad timestamp", `[{"nombre":"A","tipo":"ENTRADA","timestamp":"nope"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "asistencia_log.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("write: %v", err)
			}
			log := NewFileLog(path)

			if _, err := log.List(context.Background()); !errors.Is(err, ErrCorruptLog) {
				t.Errorf("List: expected ErrCorruptLog, got %v", err)
			}
			err := log.Append(context.Background(), Event{Name: "B", Kind: Entrada, Timestamp: time.Now()})
			if !errors.Is(err, ErrCorruptLog) {
				t.Errorf("Append: expected ErrCorruptLog, got %v", err)
			}

			// The corrupt file must be left untouched.
			data, _ := os.ReadFile(path)
			if string(data) != tt.content {
				t.Error("corrupt log was overwritten")
			}
		})
	}
}

func TestFileLog_AppendsToLegacyFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "asistencia_log.json")
	legacy := `[
  {"nombre": "Ana", "tipo": "ENTRADA", "timestamp": "2024-05-06T08:00:00.000001"}
]`
	if err := os.WriteFile(path, []byte(legacy), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	log := NewFileLog(path)

	if err := log.Append(ctx, Event{Name: "Ana", Kind: Salida, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	list, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Kind != Entrada || list[1].Kind != Salida {
		t.Errorf("unexpected log contents: %+v", list)
	}
}
