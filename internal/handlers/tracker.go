package handlers

import (
	"errors"
	"net/http"

	"calorie_budget/internal/models"
	"calorie_budget/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK           = "ok"
	statusFoodLogged   = "food_logged"
	statusSettingsSet  = "settings_updated"
	statusDayReset     = "day_reset"
	errLogFood         = "failed to log food"
	errUpdateSettings  = "failed to update settings"
	errResetDay        = "failed to reset day"
	errGetState        = "failed to load state"
	errGetZone         = "failed to classify budget"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusForError maps service validation errors to client errors.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrOutsideEatingWindow):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCalories),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrEmptySettings),
		errors.Is(err, service.ErrInvalidTimeOfDay):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status plus the current state and zone (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(ctx); err == nil {
		resp["state"] = st
		resp["zone"] = models.ZoneFor(st.CurrentCalories, st.DailyGoal)
	}
	c.JSON(http.StatusOK, resp)
}

type logFoodRequest struct {
	Calories float64 `json:"calories" binding:"required,gt=0"`
	Reason   string  `json:"reason"`
}

// LogFoodRequest is an exported model for Swagger docs of the logFood payload.
type LogFoodRequest struct {
	// Calories consumed, must be positive
	Calories float64 `json:"calories" example:"450"`
	// Why the food was eaten (hunger, boredom, stress, ...)
	Reason string `json:"reason" example:"hunger"`
}

type settingsRequest struct {
	TargetWeight      *float64 `json:"target_weight"`
	CurrentWeight     *float64 `json:"current_weight"`
	EatingWindowStart *string  `json:"eating_window_start"`
	EatingWindowEnd   *string  `json:"eating_window_end"`
}

// UpdateSettingsRequest is an exported model for Swagger docs. Omitted fields keep their value.
type UpdateSettingsRequest struct {
	TargetWeight      float64 `json:"target_weight,omitempty" example:"150"`
	CurrentWeight     float64 `json:"current_weight,omitempty" example:"180"`
	EatingWindowStart string  `json:"eating_window_start,omitempty" example:"08:00"`
	EatingWindowEnd   string  `json:"eating_window_end,omitempty" example:"18:00"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Log food
// @Description  Adds the calories to the budget. With tracker.enforce_window on, returns 409 outside the eating window.
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        body  body   LogFoodRequest  true  "Food payload"
// @Success      200   {object}  map[string]interface{}  "status, entry, state, zone"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/food [post]
// @Security     BearerAuth
func (h *Handler) logFood(c *gin.Context) {
	var req logFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	entry, err := h.services.Tracker.LogFood(c.Request.Context(), service.LogFoodParams{
		Calories: req.Calories,
		Reason:   req.Reason,
	})
	if err != nil {
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			h.logAndJSONError(c, code, errLogFood, "log_food_failed", err)
			return
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusFoodLogged, gin.H{"entry": entry})
}

// @Summary      List today's food entries
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, entries"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/food [get]
// @Security     BearerAuth
func (h *Handler) listFood(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "list_food_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(st.FoodEntries),
		"entries": st.FoodEntries,
	})
}

// @Summary      Update settings
// @Description  Partial update. target_weight sets daily_goal = target_weight × 3600; current_weight sets bmr = current_weight × 12. Window bounds are zero-padded "HH:MM".
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        body  body   UpdateSettingsRequest  true  "Settings payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings [patch]
// @Security     BearerAuth
func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	_, err := h.services.Tracker.UpdateSettings(c.Request.Context(), service.SettingsParams{
		TargetWeight:      req.TargetWeight,
		CurrentWeight:     req.CurrentWeight,
		EatingWindowStart: req.EatingWindowStart,
		EatingWindowEnd:   req.EatingWindowEnd,
	})
	if err != nil {
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			h.logAndJSONError(c, code, errUpdateSettings, "update_settings_failed", err)
			return
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSettingsSet, gin.H{})
}

// @Summary      Reset day
// @Description  Restores the budget to the daily goal and clears today's entries.
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/day/reset [post]
// @Security     BearerAuth
func (h *Handler) resetDay(c *gin.Context) {
	if _, err := h.services.Tracker.ResetDay(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errResetDay, "reset_day_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusDayReset, gin.H{})
}

// @Summary      Get calorie state
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  models.CalorieState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get budget zone
// @Description  green: current ≤ 80% of goal, yellow: up to goal, red: above goal.
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/zone [get]
// @Security     BearerAuth
func (h *Handler) getZone(c *gin.Context) {
	zone, err := h.services.Monitoring.GetZone(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetZone, "get_zone_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": zone})
}
