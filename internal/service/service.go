package service

import (
	"context"
	"time"

	"calorie_budget/internal/logger"
	"calorie_budget/internal/models"
	"calorie_budget/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Tracker exposes the user-initiated operations: log food, update settings, reset day.
type Tracker interface {
	LogFood(ctx context.Context, p LogFoodParams) (models.FoodEntry, error)
	UpdateSettings(ctx context.Context, p SettingsParams) (models.CalorieState, error)
	ResetDay(ctx context.Context) (models.CalorieState, error)
}

// Monitoring exposes read-only state and the derived zone.
type Monitoring interface {
	GetState(ctx context.Context) (models.CalorieState, error)
	GetZone(ctx context.Context) (models.Zone, error)
}

// EventLog exposes the append-only history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CalorieEvent, error)
}

// Scheduler is a periodic background task stopped via context cancellation.
type Scheduler interface {
	Run(ctx context.Context, tick time.Duration)
}

// Config carries the knobs the services need from the process config.
type Config struct {
	SigningKey    string
	TokenTTL      time.Duration
	EnforceWindow bool
	Location      *time.Location
	Clock         func() time.Time
}

// Service aggregates all sub-services around one StateStore.
type Service struct {
	Tracker
	Monitoring
	EventLog
	Authorization

	Store     *StateStore
	Decay     Scheduler
	Window    Scheduler
	Persister *Persister

	snapshots repository.SnapshotStore
	log       *logger.Logger
}

// NewService builds the state store with the default first-run state and
// wires every component to it. Call Start to load the snapshot and launch the
// background tasks.
func NewService(repos *repository.Repository, log *logger.Logger, cfg Config) *Service {
	var opts []StoreOption
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
		opts = append(opts, WithClock(cfg.Clock))
	}

	store := NewStateStore(models.DefaultState(now()), opts...)
	persister := NewPersister(repos.Snapshots, repos.EventRepo, log)
	store.Subscribe(persister.Observe)

	return &Service{
		Tracker:       NewTrackerService(store, log, cfg.EnforceWindow),
		Monitoring:    NewMonitoringService(store),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey, cfg.TokenTTL),
		Store:         store,
		Decay:         NewDecayScheduler(store, log),
		Window:        NewWindowGate(store, log, WithLocation(cfg.Location)),
		Persister:     persister,
		snapshots:     repos.Snapshots,
		log:           log,
	}
}

// Start restores the persisted state and launches the persister and both
// schedulers. They all stop when ctx is canceled; wait on Persister.Done()
// for the final flush.
func (s *Service) Start(ctx context.Context, decayTick, windowTick time.Duration) {
	Bootstrap(ctx, s.Store, s.snapshots, s.log)

	go s.Persister.Run(ctx)
	go s.Decay.Run(ctx, decayTick)
	go s.Window.Run(ctx, windowTick)
}
