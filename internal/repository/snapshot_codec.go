package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"calorie_budget/internal/models"
)

// snapshotTimeLayout keeps nanoseconds so decay baselines survive a reload exactly.
const snapshotTimeLayout = time.RFC3339Nano

// Wire shapes for the persisted blob. Timestamps travel as strings and are
// re-parsed explicitly on decode.
type snapshotDTO struct {
	CurrentCalories      float64        `json:"currentCalories"`
	DailyGoal            float64        `json:"dailyGoal"`
	FoodEntries          []foodEntryDTO `json:"foodEntries"`
	Settings             settingsDTO    `json:"settings"`
	IsWithinEatingWindow bool           `json:"isWithinEatingWindow"`
	LastUpdated          string         `json:"lastUpdated"`
}

type settingsDTO struct {
	TargetWeight      float64 `json:"targetWeight"`
	CurrentWeight     float64 `json:"currentWeight"`
	EatingWindowStart string  `json:"eatingWindowStart"`
	EatingWindowEnd   string  `json:"eatingWindowEnd"`
	BMR               float64 `json:"bmr"`
}

type foodEntryDTO struct {
	ID        string  `json:"id"`
	Calories  float64 `json:"calories"`
	Timestamp string  `json:"timestamp"`
	Reason    string  `json:"reason"`
}

func toSettingsDTO(s models.UserSettings) settingsDTO {
	return settingsDTO{
		TargetWeight:      s.TargetWeight,
		CurrentWeight:     s.CurrentWeight,
		EatingWindowStart: s.EatingWindowStart,
		EatingWindowEnd:   s.EatingWindowEnd,
		BMR:               s.BMR,
	}
}

func (d settingsDTO) toModel() models.UserSettings {
	return models.UserSettings{
		TargetWeight:      d.TargetWeight,
		CurrentWeight:     d.CurrentWeight,
		EatingWindowStart: d.EatingWindowStart,
		EatingWindowEnd:   d.EatingWindowEnd,
		BMR:               d.BMR,
	}
}

func formatSnapshotTime(t time.Time) string {
	return t.UTC().Format(snapshotTimeLayout)
}

func parseSnapshotTime(field, s string) (time.Time, error) {
	t, err := time.Parse(snapshotTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return t.UTC(), nil
}

// EncodeSnapshot serializes s into the persisted blob format.
func EncodeSnapshot(s models.CalorieState) ([]byte, error) {
	dto := snapshotDTO{
		CurrentCalories:      s.CurrentCalories,
		DailyGoal:            s.DailyGoal,
		FoodEntries:          make([]foodEntryDTO, 0, len(s.FoodEntries)),
		Settings:             toSettingsDTO(s.Settings),
		IsWithinEatingWindow: s.IsWithinEatingWindow,
		LastUpdated:          formatSnapshotTime(s.LastUpdated),
	}
	for _, e := range s.FoodEntries {
		dto.FoodEntries = append(dto.FoodEntries, foodEntryDTO{
			ID:        e.ID,
			Calories:  e.Calories,
			Timestamp: formatSnapshotTime(e.Timestamp),
			Reason:    e.Reason,
		})
	}
	b, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a blob produced by EncodeSnapshot.
func DecodeSnapshot(b []byte) (models.CalorieState, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(b, &dto); err != nil {
		return models.CalorieState{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	lastUpdated, err := parseSnapshotTime("lastUpdated", dto.LastUpdated)
	if err != nil {
		return models.CalorieState{}, err
	}
	entries := make([]models.FoodEntry, 0, len(dto.FoodEntries))
	for i, e := range dto.FoodEntries {
		ts, err := parseSnapshotTime(fmt.Sprintf("foodEntries[%d].timestamp", i), e.Timestamp)
		if err != nil {
			return models.CalorieState{}, err
		}
		entries = append(entries, models.FoodEntry{
			ID:        e.ID,
			Calories:  e.Calories,
			Timestamp: ts,
			Reason:    e.Reason,
		})
	}
	return models.CalorieState{
		CurrentCalories:      dto.CurrentCalories,
		DailyGoal:            dto.DailyGoal,
		FoodEntries:          entries,
		Settings:             dto.Settings.toModel(),
		IsWithinEatingWindow: dto.IsWithinEatingWindow,
		LastUpdated:          lastUpdated,
	}, nil
}
