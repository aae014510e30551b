package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"calorie_budget/internal/models"
	"calorie_budget/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.CalorieEvent{
		{EventID: "e1", OccurredAt: now, Type: service.EventFoodLogged, Description: "Logged 300 kcal"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: service.EventWindowClosed, Description: "Eating window closed"},
	}
	logs := &mockEventLog{resp: events}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}
	r := newTestRouter(s)

	// Invalid 'from' → 400
	w := doRequest(r, http.MethodGet, "/api/v1/logs?from=notatime", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// from after to → 400
	w = doRequest(r, http.MethodGet, "/api/v1/logs?from=2025-08-02&to=2025-08-01T00:00:00Z", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reversed range, got %d", w.Code)
	}

	// Valid range and type (lowercase type normalized to upper)
	q := "/api/v1/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=food_logged"
	w = doRequest(r, http.MethodGet, q, "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                   `json:"count"`
		Events []models.CalorieEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != service.EventFoodLogged {
		t.Fatalf("expected lastType %s, got %q", service.EventFoodLogged, logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("from not forwarded: %v", logs.lastFrom)
	}
}

func TestLogsHandler_DateOnlyToCoversWholeDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: logs})

	w := doRequest(r, http.MethodGet, "/api/v1/logs?to=2025-08-31", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2025, time.August, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("to: got %v; want %v", logs.lastTo, want)
	}
}

func TestLogsHandler_RepoError(t *testing.T) {
	logs := &mockEventLog{err: errors.New("db down")}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: logs})

	w := doRequest(r, http.MethodGet, "/api/v1/logs", "", "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestLogsHandler_RejectedFilterIsBadRequest(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		svcErr error
	}{
		{name: "unknown type", query: "?type=furnace_on", svcErr: fmt.Errorf("%q: %w", "furnace_on", service.ErrUnknownEventType)},
		{name: "range rejected by service", query: "?from=2025-08-01", svcErr: service.ErrInvalidTimeRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := &mockEventLog{err: tc.svcErr}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: logs})

			w := doRequest(r, http.MethodGet, "/api/v1/logs"+tc.query, "", "valid")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (body=%s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogsHandler_UnknownTypeAgainstRealService(t *testing.T) {
	repo := &stubEventRepo{}
	r := newTestRouter(&service.Service{
		Authorization: &mockAuth{},
		EventLog:      service.NewEventLogService(repo),
	})

	w := doRequest(r, http.MethodGet, "/api/v1/logs?type=temperature_set", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}
	if repo.calls != 0 {
		t.Fatalf("storage must not be queried for an unknown type")
	}

	w = doRequest(r, http.MethodGet, "/api/v1/logs?type=window_closed", "", "valid")
	if w.Code != http.StatusOK || repo.calls != 1 || repo.lastType != service.EventWindowClosed {
		t.Fatalf("status=%d calls=%d type=%q", w.Code, repo.calls, repo.lastType)
	}
}

// stubEventRepo backs a real EventLogService in handler tests.
type stubEventRepo struct {
	calls    int
	lastType string
}

func (s *stubEventRepo) Append(ctx context.Context, e models.CalorieEvent) error { return nil }

func (s *stubEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.CalorieEvent, error) {
	s.calls++
	s.lastType = typ
	return []models.CalorieEvent{}, nil
}

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-08-27T15:04:05+02:00", want: time.Date(2025, 8, 27, 13, 4, 5, 0, time.UTC)},
		{in: "2025-08-27 15:04:05", want: time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)},
		{in: "2025-08-27", want: time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)},
		{in: "27/08/2025", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseQueryTime(%q) err=%v, wantErr=%v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && !got.Equal(tc.want) {
			t.Fatalf("parseQueryTime(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
