package models

import "time"

// CalorieEvent is a single history entry.
type CalorieEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // FOOD_LOGGED | SETTINGS_UPDATED | DAY_RESET | WINDOW_OPENED | WINDOW_CLOSED | STATE_LOADED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
