package models

import "time"

// Defaults for a first run with no persisted snapshot.
const (
	DefaultDailyGoal     = 2200.0
	DefaultTargetWeight  = 150.0
	DefaultCurrentWeight = 180.0
	DefaultWindowStart   = "08:00"
	DefaultWindowEnd     = "18:00"
	DefaultBMR           = 1920.0
)

// Derivation factors applied when settings are saved.
const (
	CaloriesPerTargetPound = 3600.0 // dailyGoal = targetWeight × 3600
	BMRPerCurrentPound     = 12.0   // bmr = currentWeight × 12
)

// FoodEntry is an immutable record of one logging event.
type FoodEntry struct {
	ID        string    `json:"id"`
	Calories  float64   `json:"calories"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

// UserSettings is the mutable configuration owned by CalorieState.
type UserSettings struct {
	TargetWeight      float64 `json:"target_weight"`
	CurrentWeight     float64 `json:"current_weight"`
	EatingWindowStart string  `json:"eating_window_start"` // "HH:MM"
	EatingWindowEnd   string  `json:"eating_window_end"`   // "HH:MM"
	BMR               float64 `json:"bmr"`                 // kcal per 24h
}

// SettingsPatch carries a partial settings update; nil fields keep their prior value.
type SettingsPatch struct {
	TargetWeight      *float64 `json:"target_weight,omitempty"`
	CurrentWeight     *float64 `json:"current_weight,omitempty"`
	EatingWindowStart *string  `json:"eating_window_start,omitempty"`
	EatingWindowEnd   *string  `json:"eating_window_end,omitempty"`
	BMR               *float64 `json:"bmr,omitempty"`
}

// TouchesWindow reports whether the patch changes either eating-window bound.
func (p SettingsPatch) TouchesWindow() bool {
	return p.EatingWindowStart != nil || p.EatingWindowEnd != nil
}

// CalorieState is the root aggregate; one instance per process.
type CalorieState struct {
	CurrentCalories      float64      `json:"current_calories"`
	DailyGoal            float64      `json:"daily_goal"`
	FoodEntries          []FoodEntry  `json:"food_entries"`
	Settings             UserSettings `json:"settings"`
	IsWithinEatingWindow bool         `json:"is_within_eating_window"`
	LastUpdated          time.Time    `json:"last_updated"` // baseline for the next decay
}

// Clone returns a copy that shares no slice storage with s.
func (s CalorieState) Clone() CalorieState {
	out := s
	out.FoodEntries = make([]FoodEntry, len(s.FoodEntries))
	copy(out.FoodEntries, s.FoodEntries)
	return out
}

// DefaultState returns the first-run state anchored at now.
func DefaultState(now time.Time) CalorieState {
	return CalorieState{
		CurrentCalories: DefaultDailyGoal,
		DailyGoal:       DefaultDailyGoal,
		FoodEntries:     []FoodEntry{},
		Settings: UserSettings{
			TargetWeight:      DefaultTargetWeight,
			CurrentWeight:     DefaultCurrentWeight,
			EatingWindowStart: DefaultWindowStart,
			EatingWindowEnd:   DefaultWindowEnd,
			BMR:               DefaultBMR,
		},
		IsWithinEatingWindow: true,
		LastUpdated:          now,
	}
}
