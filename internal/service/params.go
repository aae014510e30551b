package service

import "time"

// LogFoodParams is a food-logging request from the UI layer.
type LogFoodParams struct {
	Calories float64
	Reason   string
}

// SettingsParams is a partial settings update; nil means "leave as is".
type SettingsParams struct {
	TargetWeight      *float64
	CurrentWeight     *float64
	EatingWindowStart *string
	EatingWindowEnd   *string
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "FOOD_LOGGED", "SETTINGS_UPDATED", "DAY_RESET", "WINDOW_OPENED", "WINDOW_CLOSED", "STATE_LOADED"
}
