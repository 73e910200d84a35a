package chat

import (
	"net/http"
	"time"

	"NutriBuddy/internal/chatservice"
	"NutriBuddy/internal/database"
	"NutriBuddy/internal/utility"
	"github.com/labstack/echo/v4"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// MealResponse is one logged food item in the day's session.
type MealResponse struct {
	EntryID  string   `json:"entry_id"`
	Name     string   `json:"name"`
	Quantity *string  `json:"quantity,omitempty"`
	Kcal     *float64 `json:"kcal,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
	LoggedAt *string  `json:"logged_at,omitempty"`
}

// SessionResponse is the full state of the caller's current tracking day.
type SessionResponse struct {
	SessionID     string         `json:"session_id"`
	Date          string         `json:"date"`
	Timezone      *string        `json:"timezone,omitempty"`
	TodayKcal     float64        `json:"today_kcal"`
	GoalKcal      *int32         `json:"goal_kcal,omitempty"`
	RemainingKcal *float64       `json:"remaining_kcal,omitempty"`
	Meals         []MealResponse `json:"meals"`
}

func mapToMealResponse(entry database.MealEntry) MealResponse {
	entryID, _ := utility.PgtypeUUIDToString(entry.EntryID)
	resp := MealResponse{
		EntryID:  entryID,
		Name:     entry.FoodName,
		Quantity: utility.TextToStringPtr(entry.Quantity),
		Kcal:     utility.NumericToFloatPtr(entry.Kcal),
		ProteinG: utility.NumericToFloatPtr(entry.ProteinG),
		CarbsG:   utility.NumericToFloatPtr(entry.CarbsG),
		FatG:     utility.NumericToFloatPtr(entry.FatG),
	}
	if entry.LoggedAt.Valid {
		ts := entry.LoggedAt.Time.Format(time.RFC3339)
		resp.LoggedAt = &ts
	}
	return resp
}

func mapToSessionResponse(session database.ChatSession, meals []database.MealEntry, goalKcal *int32) SessionResponse {
	sessionID, _ := utility.PgtypeUUIDToString(session.SessionID)
	resp := SessionResponse{
		SessionID: sessionID,
		TodayKcal: utility.NumericToFloat(session.TodayKcal),
		Timezone:  utility.TextToStringPtr(session.Timezone),
		GoalKcal:  goalKcal,
		Meals:     make([]MealResponse, 0, len(meals)),
	}

	if session.SessionDate.Valid {
		resp.Date = session.SessionDate.Time.Format("2006-01-02")
	}
	if goalKcal != nil {
		remaining := float64(*goalKcal) - resp.TodayKcal
		resp.RemainingKcal = &remaining
	}
	for _, m := range meals {
		resp.Meals = append(resp.Meals, mapToMealResponse(m))
	}

	return resp
}

/* =================================================================================
								SESSION HANDLERS
=================================================================================*/

// GetTodaySessionHandler returns the caller's tracking state for the current
// day, creating the session row on first touch. An optional "timezone" query
// parameter controls which calendar day counts as today.
func GetTodaySessionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	timezone := c.QueryParam("timezone")

	if err := queries.EnsureProfile(ctx, userHandle); err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Failed to ensure profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load session"})
	}

	session, err := queries.GetOrCreateTodaySession(ctx, database.GetOrCreateTodaySessionParams{
		UserHandle:  userHandle,
		SessionDate: chatservice.SessionDate(time.Now(), timezone),
		Timezone:    utility.StringToText(timezone),
	})
	if err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Failed to open today's session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load session"})
	}

	meals, err := queries.ListSessionMeals(ctx, session.SessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list session meals")
		meals = []database.MealEntry{}
	}

	var goalKcal *int32
	if profile, err := database.CachedProfile(ctx, queries, userHandle); err == nil {
		goalKcal = utility.Int4ToInt32Ptr(profile.GoalKcal)
	}

	return c.JSON(http.StatusOK, mapToSessionResponse(session, meals, goalKcal))
}

// ResetSessionHandler wipes today's logged meals and calorie total so the
// caller can start the day over.
func ResetSessionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	timezone := c.QueryParam("timezone")

	if err := queries.EnsureProfile(ctx, userHandle); err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Failed to ensure profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
	}

	session, err := queries.GetOrCreateTodaySession(ctx, database.GetOrCreateTodaySessionParams{
		UserHandle:  userHandle,
		SessionDate: chatservice.SessionDate(time.Now(), timezone),
		Timezone:    utility.StringToText(timezone),
	})
	if err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Failed to open today's session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
	}

	if err := queries.DeleteSessionMeals(ctx, session.SessionID); err != nil {
		logger.Error().Err(err).Msg("Failed to delete session meals")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
	}

	session, err = queries.ResetSessionKcal(ctx, session.SessionID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to reset session total")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
	}

	var goalKcal *int32
	if profile, err := database.CachedProfile(ctx, queries, userHandle); err == nil {
		goalKcal = utility.Int4ToInt32Ptr(profile.GoalKcal)
	}

	return c.JSON(http.StatusOK, mapToSessionResponse(session, []database.MealEntry{}, goalKcal))
}
