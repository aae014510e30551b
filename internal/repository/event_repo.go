package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"calorie_budget/internal/models"

	"github.com/google/uuid"
)

var errEventTypeRequired = errors.New("calorie event type is required")

// EventSQLite stores the calorie history in the calorie_events table.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	calorieEventColumns = `id, occurred_at, type, message, meta`

	insertEventSQL = `INSERT INTO calorie_events (` + calorieEventColumns + `) VALUES (?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT ` + calorieEventColumns + ` FROM calorie_events`
)

// Append records e. A missing EventID or OccurredAt is filled in; the
// metadata (entry id, calories, settings, ...) is stored as JSON.
func (r *EventSQLite) Append(ctx context.Context, e models.CalorieEvent) error {
	typ := strings.ToUpper(strings.TrimSpace(e.Type))
	if typ == "" {
		return errEventTypeRequired
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	at := e.OccurredAt.UTC()
	if e.OccurredAt.IsZero() {
		at = time.Now().UTC()
	}

	meta, err := encodeEventMeta(e.Metadata)
	if err != nil {
		return fmt.Errorf("%s event %s: %w", typ, e.EventID, err)
	}

	if _, err := r.db.ExecContext(ctx, insertEventSQL, e.EventID, at, typ, e.Description, meta); err != nil {
		return fmt.Errorf("insert %s event: %w", typ, err)
	}
	return nil
}

// List returns events in [from, to] (zero bounds are open) of type typ (empty
// for all), oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.CalorieEvent, error) {
	q, args := buildEventQuery(from, to, typ)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CalorieEvent, 0, 64)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildEventQuery(from, to time.Time, typ string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q + " ORDER BY occurred_at ASC", args
}

func scanEvent(rows *sql.Rows) (models.CalorieEvent, error) {
	var (
		ev   models.CalorieEvent
		meta sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
		return models.CalorieEvent{}, fmt.Errorf("scan calorie event: %w", err)
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	ev.Metadata = decodeEventMeta(meta)
	return ev, nil
}

// encodeEventMeta returns nil for events without metadata (window flips).
func encodeEventMeta(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodeEventMeta keeps malformed metadata as the raw string.
func decodeEventMeta(meta sql.NullString) any {
	if !meta.Valid || meta.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(meta.String), &v); err != nil {
		return meta.String
	}
	return v
}
