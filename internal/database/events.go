package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Vallit0/asistencia-senoriales/internal/events"
)

// EventRecord is a stored event with its row id and monitor run.
type EventRecord struct {
	ID    int64
	RunID string
	events.Event
}

// EventRepository is an events.Sink and events.Reader backed by SQL.
type EventRepository struct {
	db    *DB
	runID string
}

// NewEventRepository tags every appended event with runID.
// An empty runID gets a fresh UUID.
func NewEventRepository(db *DB, runID string) *EventRepository {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &EventRepository{db: db, runID: runID}
}

func (r *EventRepository) RunID() string {
	return r.runID
}

// timeArg converts a timestamp to the value stored in occurred_at.
func (r *EventRepository) timeArg(t time.Time) any {
	if r.db.dialect == SQLite {
		return t.Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// Append inserts one event.
func (r *EventRepository) Append(ctx context.Context, e events.Event) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid event kind %q", e.Kind)
	}
	query := r.db.Rebind(`INSERT INTO attendance_events (run_id, name, kind, occurred_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.db.ExecContext(ctx, query, r.runID, e.Name, string(e.Kind), r.timeArg(e.Timestamp)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns every stored event in insertion order.
func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	records, err := r.query(ctx, `SELECT id, run_id, name, kind, occurred_at FROM attendance_events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return toEvents(records), nil
}

// Recent returns the newest limit events, oldest first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		return r.query(ctx, `SELECT id, run_id, name, kind, occurred_at FROM attendance_events ORDER BY id`)
	}
	records, err := r.query(ctx, `SELECT id, run_id, name, kind, occurred_at FROM attendance_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// ListByRun returns the events of one monitor run in insertion order.
func (r *EventRepository) ListByRun(ctx context.Context, runID string) ([]EventRecord, error) {
	return r.query(ctx, `SELECT id, run_id, name, kind, occurred_at FROM attendance_events WHERE run_id = ? ORDER BY id`, runID)
}

// Count returns the number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) query(ctx context.Context, query string, args ...any) ([]EventRecord, error) {
	rows, err := r.db.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var (
			rec        EventRecord
			kind       string
			occurredAt string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Name, &kind, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Kind = events.Kind(kind)
		if !rec.Kind.Valid() {
			return nil, fmt.Errorf("%w: row %d has kind %q", events.ErrCorruptLog, rec.ID, kind)
		}
		ts, err := events.ParseTimestamp(occurredAt)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", events.ErrCorruptLog, rec.ID, err)
		}
		rec.Timestamp = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

func toEvents(records []EventRecord) []events.Event {
	out := make([]events.Event, len(records))
	for i, rec := range records {
		out[i] = rec.Event
	}
	return out
}
