package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"calorie_budget/internal/models"
)

// OwnerRepository stores the single device owner (owner.id is always 1).
type OwnerRepository struct {
	db *sql.DB
}

func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*OwnerRepository)(nil)

const (
	ownerRowID = 1

	insertOwnerSQL           = `INSERT INTO owner (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	selectOwnerByUsernameSQL = `SELECT id, username, password_hash, created_at FROM owner WHERE username = ?`
	countOwnerSQL            = `SELECT COUNT(1) FROM owner`
)

// Create inserts the owner row and returns its ID.
func (r *OwnerRepository) Create(username, passwordHash string) (int, error) {
	if _, err := r.db.Exec(insertOwnerSQL, ownerRowID, username, passwordHash, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("insert owner %q: %w", username, err)
	}
	return ownerRowID, nil
}

// GetByUsername fetches the owner by username. Returns (nil, nil) if not found.
func (r *OwnerRepository) GetByUsername(username string) (*models.Owner, error) {
	var o models.Owner
	err := r.db.QueryRow(selectOwnerByUsernameSQL, username).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select owner %q: %w", username, err)
	}
	return &o, nil
}

// Exists reports whether the owner slot has been claimed.
func (r *OwnerRepository) Exists() (bool, error) {
	var n int
	if err := r.db.QueryRow(countOwnerSQL).Scan(&n); err != nil {
		return false, fmt.Errorf("count owner: %w", err)
	}
	return n > 0, nil
}
