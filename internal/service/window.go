package service

import (
	"context"
	"errors"
	"time"

	"calorie_budget/internal/logger"
	"calorie_budget/internal/models"
)

const (
	// TimeOfDayLayout is the zero-padded 24h "HH:MM" form.
	TimeOfDayLayout   = "15:04"
	DefaultWindowTick = time.Minute
)

var ErrInvalidTimeOfDay = errors.New(`invalid time of day: expected zero-padded "HH:MM"`)

// ValidateTimeOfDay reports whether s is a canonical "HH:MM" value. Only the
// canonical form compares correctly as a string.
func ValidateTimeOfDay(s string) error {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil || t.Format(TimeOfDayLayout) != s {
		return ErrInvalidTimeOfDay
	}
	return nil
}

// WithinWindow reports whether the time of day of at lies in [start, end]
// using string comparison. Windows crossing midnight (start > end) are not
// supported and evaluate as closed except where the strings happen to order.
func WithinWindow(start, end string, at time.Time) bool {
	cur := at.Format(TimeOfDayLayout)
	return start <= cur && cur <= end
}

// WindowOption configures a WindowGate.
type WindowOption func(*WindowGate)

// WithLocation sets the zone the time of day is read in.
func WithLocation(loc *time.Location) WindowOption {
	return func(g *WindowGate) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WindowGate keeps the cached IsWithinEatingWindow flag current.
type WindowGate struct {
	store   *StateStore
	log     *logger.Logger
	loc     *time.Location
	trigger chan struct{}
}

// NewWindowGate returns a gate bound to store. It subscribes itself so that
// window-bound changes trigger a re-evaluation.
func NewWindowGate(store *StateStore, log *logger.Logger, opts ...WindowOption) *WindowGate {
	g := &WindowGate{
		store:   store,
		log:     log,
		loc:     time.Local,
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	store.Subscribe(g.observe)
	return g
}

func (g *WindowGate) observe(c Change) {
	if c.Transition.Kind == KindUpdateSettings && c.Transition.Patch.TouchesWindow() {
		g.Trigger()
	}
}

// Trigger requests a re-evaluation without blocking.
func (g *WindowGate) Trigger() {
	select {
	case g.trigger <- struct{}{}:
	default:
	}
}

// Evaluate recomputes the flag and submits a transition only if it differs
// from the cached value. It returns whether a transition was applied.
func (g *WindowGate) Evaluate() bool {
	st, changed := g.store.Update(func(st models.CalorieState, now time.Time) (Transition, bool) {
		within := WithinWindow(st.Settings.EatingWindowStart, st.Settings.EatingWindowEnd, now.In(g.loc))
		if within == st.IsWithinEatingWindow {
			return Transition{}, false
		}
		return SetWithinEatingWindowTransition(within), true
	})
	if changed {
		g.log.Infow("window_changed",
			"open", st.IsWithinEatingWindow,
			"start", st.Settings.EatingWindowStart,
			"end", st.Settings.EatingWindowEnd,
		)
	}
	return changed
}

// Run evaluates once immediately, then on every tick and every Trigger until
// ctx is canceled.
func (g *WindowGate) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultWindowTick
	}
	g.Evaluate()

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			g.Evaluate()
		case <-g.trigger:
			g.Evaluate()
		}
	}
}
