package service

import (
	"math"
	"time"

	"calorie_budget/internal/models"
)

// TransitionKind names an atomic state change.
type TransitionKind string

const (
	KindLogFood               TransitionKind = "LOG_FOOD"
	KindSetCurrentCalories    TransitionKind = "SET_CURRENT_CALORIES"
	KindUpdateSettings        TransitionKind = "UPDATE_SETTINGS"
	KindResetDay              TransitionKind = "RESET_DAY"
	KindLoadState             TransitionKind = "LOAD_STATE"
	KindSetWithinEatingWindow TransitionKind = "SET_WITHIN_EATING_WINDOW"
)

// Transition is a request to change CalorieState. Only the fields relevant to
// Kind are read.
type Transition struct {
	Kind     TransitionKind
	Entry    models.FoodEntry     // LOG_FOOD
	Calories float64              // SET_CURRENT_CALORIES
	Patch    models.SettingsPatch // UPDATE_SETTINGS
	Within   bool                 // SET_WITHIN_EATING_WINDOW
	Snapshot models.CalorieState  // LOAD_STATE
}

// LogFoodTransition adds the entry's calories and appends it to today's entries.
func LogFoodTransition(e models.FoodEntry) Transition {
	return Transition{Kind: KindLogFood, Entry: e}
}

// SetCurrentCaloriesTransition sets the current calories to v, floored at zero.
func SetCurrentCaloriesTransition(v float64) Transition {
	return Transition{Kind: KindSetCurrentCalories, Calories: v}
}

// UpdateSettingsTransition merges the set fields of p into the settings.
func UpdateSettingsTransition(p models.SettingsPatch) Transition {
	return Transition{Kind: KindUpdateSettings, Patch: p}
}

// ResetDayTransition sets current calories back to the daily goal and clears the entries.
func ResetDayTransition() Transition {
	return Transition{Kind: KindResetDay}
}

// LoadStateTransition replaces the whole state with a restored snapshot.
func LoadStateTransition(s models.CalorieState) Transition {
	return Transition{Kind: KindLoadState, Snapshot: s}
}

// SetWithinEatingWindowTransition records whether the eating window is open.
func SetWithinEatingWindowTransition(within bool) Transition {
	return Transition{Kind: KindSetWithinEatingWindow, Within: within}
}

// Reduce applies tr to st as of now and returns the next state. It never
// writes into st's entry slice, so earlier snapshots stay valid.
func Reduce(st models.CalorieState, tr Transition, now time.Time) models.CalorieState {
	switch tr.Kind {
	case KindLogFood:
		st.CurrentCalories += tr.Entry.Calories
		st.FoodEntries = append(st.FoodEntries[:len(st.FoodEntries):len(st.FoodEntries)], tr.Entry)

	case KindSetCurrentCalories:
		st.CurrentCalories = math.Max(0, tr.Calories)
		st.LastUpdated = now

	case KindUpdateSettings:
		st.Settings = mergeSettings(st.Settings, tr.Patch)
		if tr.Patch.TargetWeight != nil {
			st.DailyGoal = *tr.Patch.TargetWeight * models.CaloriesPerTargetPound
		}

	case KindResetDay:
		st.CurrentCalories = st.DailyGoal
		st.FoodEntries = []models.FoodEntry{}
		st.LastUpdated = now

	case KindLoadState:
		return tr.Snapshot.Clone()

	case KindSetWithinEatingWindow:
		st.IsWithinEatingWindow = tr.Within
	}
	return st
}

func mergeSettings(s models.UserSettings, p models.SettingsPatch) models.UserSettings {
	if p.TargetWeight != nil {
		s.TargetWeight = *p.TargetWeight
	}
	if p.CurrentWeight != nil {
		s.CurrentWeight = *p.CurrentWeight
	}
	if p.EatingWindowStart != nil {
		s.EatingWindowStart = *p.EatingWindowStart
	}
	if p.EatingWindowEnd != nil {
		s.EatingWindowEnd = *p.EatingWindowEnd
	}
	if p.BMR != nil {
		s.BMR = *p.BMR
	}
	return s
}
