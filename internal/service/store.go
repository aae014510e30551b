package service

import (
	"sync"
	"time"

	"calorie_budget/internal/models"

	"github.com/google/uuid"
)

// Change describes one applied transition. Next is a private copy.
type Change struct {
	Transition Transition
	Prev       models.CalorieState
	Next       models.CalorieState
	At         time.Time
}

// Observer is notified after every transition, in application order. It runs
// inside the store's critical section and must neither block nor call back
// into the store.
type Observer func(Change)

// StoreOption configures a StateStore.
type StoreOption func(*StateStore)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *StateStore) {
		s.now = now
	}
}

// StateStore owns the single CalorieState and serializes every transition.
type StateStore struct {
	mu        sync.Mutex
	state     models.CalorieState
	now       func() time.Time
	observers []Observer
}

// NewStateStore returns a store holding initial.
func NewStateStore(initial models.CalorieState, opts ...StoreOption) *StateStore {
	s := &StateStore{
		state: initial.Clone(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers o for all subsequent transitions.
func (s *StateStore) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Apply applies tr atomically and returns a copy of the resulting state.
func (s *StateStore) Apply(tr Transition) models.CalorieState {
	next, _ := s.Update(func(models.CalorieState, time.Time) (Transition, bool) {
		return tr, true
	})
	return next
}

// Update runs decide against the current state and applies the transition it
// returns, all under the single-writer lock. decide sees the same instant the
// transition is applied at. When decide returns false nothing changes.
func (s *StateStore) Update(decide func(st models.CalorieState, now time.Time) (Transition, bool)) (models.CalorieState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tr, ok := decide(s.state, now)
	if !ok {
		return s.state.Clone(), false
	}

	prev := s.state
	s.state = Reduce(s.state, tr, now)

	out := s.state.Clone()
	if len(s.observers) > 0 {
		change := Change{Transition: tr, Prev: prev, Next: s.state.Clone(), At: now}
		for _, o := range s.observers {
			o(change)
		}
	}
	return out, true
}

// Snapshot returns a read-only copy of the current state.
func (s *StateStore) Snapshot() models.CalorieState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Zone classifies the current budget.
func (s *StateStore) Zone() models.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ZoneFor(s.state.CurrentCalories, s.state.DailyGoal)
}

// LogFood appends a fresh entry and adds its calories to the budget.
// calories must already be validated by the caller.
func (s *StateStore) LogFood(calories float64, reason string) models.FoodEntry {
	var entry models.FoodEntry
	s.Update(func(_ models.CalorieState, now time.Time) (Transition, bool) {
		entry = models.FoodEntry{
			ID:        newEntryID(),
			Calories:  calories,
			Timestamp: now,
			Reason:    reason,
		}
		return LogFoodTransition(entry), true
	})
	return entry
}

// SetCurrentCalories floors v at zero and refreshes the decay baseline.
func (s *StateStore) SetCurrentCalories(v float64) models.CalorieState {
	return s.Apply(SetCurrentCaloriesTransition(v))
}

// UpdateSettings merges p into the settings.
func (s *StateStore) UpdateSettings(p models.SettingsPatch) models.CalorieState {
	return s.Apply(UpdateSettingsTransition(p))
}

// ResetDay restores the full daily goal and clears the entries.
func (s *StateStore) ResetDay() models.CalorieState {
	return s.Apply(ResetDayTransition())
}

// LoadState replaces the whole state with snap, trusted as-is.
func (s *StateStore) LoadState(snap models.CalorieState) models.CalorieState {
	return s.Apply(LoadStateTransition(snap))
}

// SetWithinEatingWindow updates the cached window flag.
func (s *StateStore) SetWithinEatingWindow(within bool) models.CalorieState {
	return s.Apply(SetWithinEatingWindowTransition(within))
}

// newEntryID returns a time-ordered UUIDv7, falling back to v4.
func newEntryID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
