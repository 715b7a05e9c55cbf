package store

import (
	"context"
	"fmt"
)

// AppendEvent writes an event to the log.
func (s *Store) AppendEvent(ctx context.Context, event *Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (event_id, event_type, session_id, version, ts_event, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(event.EventID),
		string(event.EventType),
		event.SessionID,
		event.Version,
		event.TsEvent,
		[]byte(event.Payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", event.EventID, err)
	}
	return nil
}

// ReadRecentEvents returns the most recent events in reverse
// ingestion order. limit <= 0 means no limit.
func (s *Store) ReadRecentEvents(ctx context.Context, limit int) ([]*Event, error) {
	query := `
		SELECT event_id, event_type, session_id, version, ts_event, ts_ingest, payload
		FROM events ORDER BY ts_ingest DESC, version DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ReadSessionEvents returns all events for a session in version
// order, the order replay needs.
func (s *Store) ReadSessionEvents(ctx context.Context, sessionID string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, event_type, session_id, version, ts_event, ts_ingest, payload
		FROM events WHERE session_id = ? ORDER BY version ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Sessions lists distinct session IDs, newest first.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id FROM events GROUP BY session_id ORDER BY MAX(ts_ingest) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEvents(rows rowScanner) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var (
			e       Event
			id      string
			typ     string
			payload []byte
		)
		if err := rows.Scan(&id, &typ, &e.SessionID, &e.Version, &e.TsEvent, &e.TsIngest, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.EventID = EventID(id)
		e.EventType = EventType(typ)
		e.Payload = payload
		out = append(out, &e)
	}
	return out, rows.Err()
}
