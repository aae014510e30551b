package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"calorie_budget/internal/models"
)

type SnapshotSQLite struct {
	db  *sql.DB
	key string
}

// SnapshotKey is the single key the calorie state is stored under.
const SnapshotKey = "calorieState"

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db, key: SnapshotKey}
}

const (
	upsertBlobSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectBlobSQL = `SELECT value FROM kv_store WHERE key=?`
)

// Save serializes the state and writes it under the snapshot key.
func (r *SnapshotSQLite) Save(ctx context.Context, state models.CalorieState) error {
	blob, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertBlobSQL, r.key, string(blob), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot %q: %w", r.key, err)
	}
	return nil
}

// Load returns the persisted state, or ok=false on first run.
func (r *SnapshotSQLite) Load(ctx context.Context) (models.CalorieState, bool, error) {
	var blob string
	if err := r.db.QueryRowContext(ctx, selectBlobSQL, r.key).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CalorieState{}, false, nil
		}
		return models.CalorieState{}, false, fmt.Errorf("load snapshot %q: %w", r.key, err)
	}
	st, err := DecodeSnapshot([]byte(blob))
	if err != nil {
		return models.CalorieState{}, false, err
	}
	return st, true, nil
}
