package service

import (
	"context"
	"time"

	"calorie_budget/internal/models"
)

type MonitoringService struct {
	store *StateStore
}

func NewMonitoringService(store *StateStore) *MonitoringService {
	return &MonitoringService{store: store}
}

// GetState returns a read-only copy of the current state with timestamps in UTC.
func (s *MonitoringService) GetState(ctx context.Context) (models.CalorieState, error) {
	st := s.store.Snapshot()
	st.LastUpdated = toUTC(st.LastUpdated)
	for i := range st.FoodEntries {
		st.FoodEntries[i].Timestamp = toUTC(st.FoodEntries[i].Timestamp)
	}
	return st, nil
}

// GetZone classifies the current budget.
func (s *MonitoringService) GetZone(ctx context.Context) (models.Zone, error) {
	return s.store.Zone(), nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
