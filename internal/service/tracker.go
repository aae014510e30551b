package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"calorie_budget/internal/logger"
	"calorie_budget/internal/models"
)

var (
	ErrInvalidCalories     = errors.New("invalid calories: must be a positive number")
	ErrInvalidWeight       = errors.New("invalid weight: must be greater than 0")
	ErrEmptySettings       = errors.New("no settings fields provided")
	ErrOutsideEatingWindow = errors.New("outside eating window")
)

// TrackerService validates caller input and turns it into store transitions.
type TrackerService struct {
	store         *StateStore
	log           *logger.Logger
	enforceWindow bool
}

func NewTrackerService(store *StateStore, log *logger.Logger, enforceWindow bool) *TrackerService {
	return &TrackerService{store: store, log: log, enforceWindow: enforceWindow}
}

// LogFood records an entry. When window enforcement is on, logging outside
// the cached eating window is refused.
func (s *TrackerService) LogFood(ctx context.Context, p LogFoodParams) (models.FoodEntry, error) {
	if !(p.Calories > 0) || math.IsInf(p.Calories, 0) {
		return models.FoodEntry{}, ErrInvalidCalories
	}
	if s.enforceWindow && !s.store.Snapshot().IsWithinEatingWindow {
		return models.FoodEntry{}, ErrOutsideEatingWindow
	}

	entry := s.store.LogFood(p.Calories, strings.TrimSpace(p.Reason))
	s.log.Infow("food_logged", "id", entry.ID, "calories", entry.Calories, "reason", entry.Reason)
	return entry, nil
}

// UpdateSettings validates p, derives BMR from the current weight and merges
// the result into the settings.
func (s *TrackerService) UpdateSettings(ctx context.Context, p SettingsParams) (models.CalorieState, error) {
	patch, err := buildSettingsPatch(p)
	if err != nil {
		return models.CalorieState{}, err
	}
	st := s.store.UpdateSettings(patch)
	s.log.Infow("settings_updated",
		"target_weight", st.Settings.TargetWeight,
		"current_weight", st.Settings.CurrentWeight,
		"window", st.Settings.EatingWindowStart+"-"+st.Settings.EatingWindowEnd,
		"bmr", st.Settings.BMR,
		"daily_goal", st.DailyGoal,
	)
	return st, nil
}

// ResetDay starts a fresh day at the daily goal.
func (s *TrackerService) ResetDay(ctx context.Context) (models.CalorieState, error) {
	st := s.store.ResetDay()
	s.log.Infow("day_reset", "daily_goal", st.DailyGoal)
	return st, nil
}

func buildSettingsPatch(p SettingsParams) (models.SettingsPatch, error) {
	var patch models.SettingsPatch
	if p.TargetWeight == nil && p.CurrentWeight == nil && p.EatingWindowStart == nil && p.EatingWindowEnd == nil {
		return patch, ErrEmptySettings
	}
	if p.TargetWeight != nil {
		if err := validateWeight("target_weight", *p.TargetWeight); err != nil {
			return patch, err
		}
		patch.TargetWeight = p.TargetWeight
	}
	if p.CurrentWeight != nil {
		if err := validateWeight("current_weight", *p.CurrentWeight); err != nil {
			return patch, err
		}
		bmr := *p.CurrentWeight * models.BMRPerCurrentPound
		patch.CurrentWeight = p.CurrentWeight
		patch.BMR = &bmr
	}
	if p.EatingWindowStart != nil {
		if err := ValidateTimeOfDay(*p.EatingWindowStart); err != nil {
			return patch, fmt.Errorf("eating_window_start %q: %w", *p.EatingWindowStart, err)
		}
		patch.EatingWindowStart = p.EatingWindowStart
	}
	if p.EatingWindowEnd != nil {
		if err := ValidateTimeOfDay(*p.EatingWindowEnd); err != nil {
			return patch, fmt.Errorf("eating_window_end %q: %w", *p.EatingWindowEnd, err)
		}
		patch.EatingWindowEnd = p.EatingWindowEnd
	}
	return patch, nil
}

func validateWeight(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s %v: %w", field, v, ErrInvalidWeight)
	}
	return nil
}
