package repository

import (
	"context"
	"database/sql"
	"time"

	"calorie_budget/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Owner, error)
	Exists() (bool, error)
}

// SnapshotStore is the opaque blob store holding the serialized CalorieState.
// Load reports ok=false when nothing has been persisted yet.
type SnapshotStore interface {
	Save(ctx context.Context, s models.CalorieState) error
	Load(ctx context.Context) (s models.CalorieState, ok bool, err error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.CalorieEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CalorieEvent, error)
}

type Repository struct {
	Snapshots SnapshotStore
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Snapshots: NewSnapshotSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewOwnerRepository(db),
	}
}
