package service

import (
	"context"
	"math"
	"time"

	"calorie_budget/internal/logger"
	"calorie_budget/internal/models"
)

// ----------- Decay constants -----------
const (
	HoursPerDay      = 24.0
	DefaultDecayTick = time.Minute
)

// Burned returns the calories burned between st.LastUpdated and now at the
// state's BMR. It is negative when the clock is behind LastUpdated.
func Burned(st models.CalorieState, now time.Time) float64 {
	return now.Sub(st.LastUpdated).Hours() * (st.Settings.BMR / HoursPerDay)
}

// decayDecision turns elapsed time into a SET_CURRENT_CALORIES transition.
// No transition when nothing was burned, so LastUpdated stays put if the
// clock moved backwards.
func decayDecision(st models.CalorieState, now time.Time) (Transition, bool) {
	burned := Burned(st, now)
	if !(burned > 0) {
		return Transition{}, false
	}
	return SetCurrentCaloriesTransition(math.Max(0, st.CurrentCalories-burned)), true
}

// DecayScheduler depletes the budget at the basal metabolic rate.
type DecayScheduler struct {
	store *StateStore
	log   *logger.Logger
}

// NewDecayScheduler returns a scheduler submitting into store.
func NewDecayScheduler(store *StateStore, log *logger.Logger) *DecayScheduler {
	return &DecayScheduler{store: store, log: log}
}

// Tick applies decay for the time elapsed since the last decay. The read of
// LastUpdated and its refresh happen in the same transition.
func (d *DecayScheduler) Tick() bool {
	before := 0.0
	st, applied := d.store.Update(func(st models.CalorieState, now time.Time) (Transition, bool) {
		before = st.CurrentCalories
		return decayDecision(st, now)
	})
	if applied {
		d.log.Debugw("decay_applied", "before", before, "after", st.CurrentCalories)
	}
	return applied
}

// Run catches up once immediately, then ticks at the given interval until ctx
// is canceled.
func (d *DecayScheduler) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultDecayTick
	}
	d.Tick()

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Tick()
		}
	}
}
