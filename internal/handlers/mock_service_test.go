package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"calorie_budget/internal/models"
	"calorie_budget/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTracker struct {
	entry       models.FoodEntry
	logFoodErr  error
	settingsErr error
	resetErr    error

	lastLogFood   service.LogFoodParams
	lastSettings  service.SettingsParams
	logFoodCalls  int
	settingsCalls int
	resetCalls    int
}

func (m *mockTracker) LogFood(ctx context.Context, p service.LogFoodParams) (models.FoodEntry, error) {
	m.logFoodCalls++
	m.lastLogFood = p
	return m.entry, m.logFoodErr
}
func (m *mockTracker) UpdateSettings(ctx context.Context, p service.SettingsParams) (models.CalorieState, error) {
	m.settingsCalls++
	m.lastSettings = p
	return models.CalorieState{}, m.settingsErr
}
func (m *mockTracker) ResetDay(ctx context.Context) (models.CalorieState, error) {
	m.resetCalls++
	return models.CalorieState{}, m.resetErr
}

type mockMonitoring struct {
	state models.CalorieState
	zone  models.Zone
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.CalorieState, error) {
	return m.state, m.err
}
func (m *mockMonitoring) GetZone(ctx context.Context) (models.Zone, error) {
	return m.zone, m.err
}

type mockEventLog struct {
	resp     []models.CalorieEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.CalorieEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doRequest serves one request through r with an optional bearer token.
func doRequest(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
