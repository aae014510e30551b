package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calorie_budget/internal/models"
	"calorie_budget/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownEventType = errors.New("unknown event type")
)

// historyEventTypes is every type the persister writes to the history log.
var historyEventTypes = map[string]struct{}{
	EventFoodLogged:      {},
	EventSettingsUpdated: {},
	EventDayReset:        {},
	EventWindowOpened:    {},
	EventWindowClosed:    {},
	EventStateLoaded:     {},
}

// EventLogService answers history queries over the persisted calorie events.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// parseEventType accepts any casing of a history event type. Empty means all types.
func parseEventType(s string) (string, error) {
	typ := strings.ToUpper(strings.TrimSpace(s))
	if typ == "" {
		return "", nil
	}
	if _, ok := historyEventTypes[typ]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownEventType)
	}
	return typ, nil
}

// resolveFilter converts f to UTC bounds and a canonical event type.
func resolveFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{From: f.From, To: f.To}
	if !out.From.IsZero() {
		out.From = out.From.UTC()
	}
	if !out.To.IsZero() {
		out.To = out.To.UTC()
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	typ, err := parseEventType(f.Type)
	if err != nil {
		return LogFilter{}, err
	}
	out.Type = typ
	return out, nil
}

// List returns the food, settings, reset, window and restore events matching
// f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.CalorieEvent, error) {
	rf, err := resolveFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, rf.From, rf.To, rf.Type)
	if err != nil {
		return nil, fmt.Errorf("list calorie events: %w", err)
	}
	return events, nil
}
