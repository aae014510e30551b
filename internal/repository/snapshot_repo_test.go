package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"calorie_budget/internal/models"
	"calorie_budget/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}

func sampleState() models.CalorieState {
	base := time.Date(2025, 6, 2, 9, 30, 15, 123456789, time.UTC)
	return models.CalorieState{
		CurrentCalories: 1450.25,
		DailyGoal:       2200,
		FoodEntries: []models.FoodEntry{
			{ID: "a", Calories: 300, Timestamp: base.Add(-2 * time.Hour), Reason: "I'm hungry and need energy"},
			{ID: "b", Calories: 120.5, Timestamp: base.Add(-time.Hour), Reason: "I'm within my range and enjoying something"},
		},
		Settings: models.UserSettings{
			TargetWeight:      150,
			CurrentWeight:     180,
			EatingWindowStart: "08:00",
			EatingWindowEnd:   "18:00",
			BMR:               2160,
		},
		IsWithinEatingWindow: true,
		LastUpdated:          base,
	}
}

func TestSnapshotSQLite_Save_WritesEncodedBlobUnderKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewSnapshotSQLite(db)
	state := sampleState()

	decodesBack := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		got, err := repository.DecodeSnapshot([]byte(s))
		return err == nil && reflect.DeepEqual(got, state)
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs(repository.SnapshotKey, decodesBack, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSnapshotSQLite_Save_ExecErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewSnapshotSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WillReturnError(errors.New("disk full"))

	err = repo.Save(context.Background(), sampleState())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Save() expected wrapped error, got %v", err)
	}
}

func TestSnapshotSQLite_Load(t *testing.T) {
	valid, err := repository.EncodeSnapshot(sampleState())
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}

	cases := []struct {
		name    string
		expect  func(m sqlmock.Sqlmock)
		wantOK  bool
		wantErr bool
	}{
		{
			name: "first run has no row",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(repository.SnapshotKey).
					WillReturnRows(sqlmock.NewRows([]string{"value"}))
			},
		},
		{
			name: "stored blob decodes",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(repository.SnapshotKey).
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(string(valid)))
			},
			wantOK: true,
		},
		{
			name: "corrupt blob",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(repository.SnapshotKey).
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"lastUpdated":"yesterday"}`))
			},
			wantErr: true,
		},
		{
			name: "query error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(repository.SnapshotKey).
					WillReturnError(errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New(): %v", err)
			}
			defer db.Close()

			tc.expect(mock)
			got, ok, err := repository.NewSnapshotSQLite(db).Load(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("Load() ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && !reflect.DeepEqual(got, sampleState()) {
				t.Fatalf("Load() state mismatch:\n got %+v\nwant %+v", got, sampleState())
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
