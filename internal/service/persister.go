package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"calorie_budget/internal/logger"
	"calorie_budget/internal/models"
	"calorie_budget/internal/repository"

	"github.com/google/uuid"
)

// Event types written to the history log.
const (
	EventFoodLogged      = "FOOD_LOGGED"
	EventSettingsUpdated = "SETTINGS_UPDATED"
	EventDayReset        = "DAY_RESET"
	EventWindowOpened    = "WINDOW_OPENED"
	EventWindowClosed    = "WINDOW_CLOSED"
	EventStateLoaded     = "STATE_LOADED"
)

const defaultSaveTimeout = 5 * time.Second

// Persister writes snapshots and history events outside the transition path.
// Only the latest pending snapshot is saved; events are kept in order.
type Persister struct {
	snapshots repository.SnapshotStore
	events    repository.EventRepo
	log       *logger.Logger

	mu            sync.Mutex
	pending       *models.CalorieState
	pendingEvents []models.CalorieEvent

	wake        chan struct{}
	done        chan struct{}
	saveTimeout time.Duration
}

// NewPersister returns a persister. events may be nil.
func NewPersister(snapshots repository.SnapshotStore, events repository.EventRepo, log *logger.Logger) *Persister {
	return &Persister{
		snapshots:   snapshots,
		events:      events,
		log:         log,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		saveTimeout: defaultSaveTimeout,
	}
}

// Observe queues the new state (and a history event, if any) for saving.
// It never blocks.
func (p *Persister) Observe(c Change) {
	next := c.Next
	ev, hasEvent := eventFor(c)

	p.mu.Lock()
	p.pending = &next
	if hasEvent && p.events != nil {
		p.pendingEvents = append(p.pendingEvents, ev)
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run saves queued work until ctx is canceled, then flushes what is left.
// Saves use their own timeout so shutdown cannot abort a write halfway.
func (p *Persister) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			p.flushWithTimeout()
			return
		case <-p.wake:
			p.flushWithTimeout()
			if ctx.Err() != nil {
				p.flushWithTimeout()
				return
			}
		}
	}
}

func (p *Persister) flushWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()
	p.Flush(ctx)
}

// Done is closed once Run has returned.
func (p *Persister) Done() <-chan struct{} {
	return p.done
}

// Flush writes everything queued so far. Failures are logged and dropped;
// they never reach the transition that produced the state.
func (p *Persister) Flush(ctx context.Context) {
	p.mu.Lock()
	snap := p.pending
	events := p.pendingEvents
	p.pending = nil
	p.pendingEvents = nil
	p.mu.Unlock()

	for _, ev := range events {
		if err := p.events.Append(ctx, ev); err != nil {
			p.log.Errorw("event_append_failed", "err", err, "type", ev.Type)
		}
	}
	if snap == nil {
		return
	}
	if err := p.snapshots.Save(ctx, *snap); err != nil {
		p.log.Errorw("snapshot_save_failed", "err", err)
		return
	}
	p.log.Debugw("snapshot_saved", "current_calories", snap.CurrentCalories, "entries", len(snap.FoodEntries))
}

// eventFor maps a change to its history event. Decay ticks are not recorded.
func eventFor(c Change) (models.CalorieEvent, bool) {
	ev := models.CalorieEvent{EventID: uuid.NewString(), OccurredAt: c.At.UTC()}
	tr := c.Transition

	switch tr.Kind {
	case KindLogFood:
		ev.Type = EventFoodLogged
		ev.Description = fmt.Sprintf("Logged %g kcal", tr.Entry.Calories)
		ev.Metadata = map[string]any{
			"entry_id":         tr.Entry.ID,
			"calories":         tr.Entry.Calories,
			"reason":           tr.Entry.Reason,
			"current_calories": c.Next.CurrentCalories,
		}
	case KindUpdateSettings:
		ev.Type = EventSettingsUpdated
		ev.Description = "Settings updated"
		ev.Metadata = map[string]any{
			"settings":   c.Next.Settings,
			"daily_goal": c.Next.DailyGoal,
		}
	case KindResetDay:
		ev.Type = EventDayReset
		ev.Description = "Day reset"
		ev.Metadata = map[string]any{
			"daily_goal":      c.Next.DailyGoal,
			"cleared_entries": len(c.Prev.FoodEntries),
		}
	case KindSetWithinEatingWindow:
		if tr.Within {
			ev.Type = EventWindowOpened
			ev.Description = "Eating window opened"
		} else {
			ev.Type = EventWindowClosed
			ev.Description = "Eating window closed"
		}
	case KindLoadState:
		ev.Type = EventStateLoaded
		ev.Description = "State restored from snapshot"
		ev.Metadata = map[string]any{"last_updated": c.Next.LastUpdated}
	default:
		return models.CalorieEvent{}, false
	}
	return ev, true
}

// Bootstrap loads the persisted snapshot into store. A missing snapshot keeps
// the store's initial state; a load failure is logged and does the same.
func Bootstrap(ctx context.Context, store *StateStore, snapshots repository.SnapshotStore, log *logger.Logger) bool {
	snap, ok, err := snapshots.Load(ctx)
	if err != nil {
		log.Errorw("snapshot_load_failed", "err", err)
		return false
	}
	if !ok {
		log.Infow("snapshot_absent", "using", "default_state")
		return false
	}
	store.LoadState(snap)
	log.Infow("snapshot_loaded",
		"current_calories", snap.CurrentCalories,
		"entries", len(snap.FoodEntries),
		"last_updated", snap.LastUpdated,
	)
	return true
}
