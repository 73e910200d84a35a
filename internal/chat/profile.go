package chat

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"NutriBuddy/internal/database"
	"NutriBuddy/internal/utility"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ProfileRequest replaces the stored profile wholesale. Omitted fields are
// cleared, so clients should send the full document on every PUT.
type ProfileRequest struct {
	DisplayName   *string  `json:"display_name" form:"display_name"`
	Age           *int32   `json:"age" form:"age"`
	Sex           *string  `json:"sex" form:"sex"`
	HeightCm      *float64 `json:"height_cm" form:"height_cm"`
	WeightKg      *float64 `json:"weight_kg" form:"weight_kg"`
	ActivityLevel *string  `json:"activity_level" form:"activity_level"`
	GoalKcal      *int32   `json:"goal_kcal" form:"goal_kcal"`
	Preferences   []string `json:"preferences" form:"preferences"`
	Allergies     []string `json:"allergies" form:"allergies"`
	Language      *string  `json:"language" form:"language"`
}

// ProfileResponse provides the stored profile for standard API responses.
type ProfileResponse struct {
	UserHandle    string   `json:"user_handle"`
	DisplayName   *string  `json:"display_name,omitempty"`
	Age           *int32   `json:"age,omitempty"`
	Sex           *string  `json:"sex,omitempty"`
	HeightCm      *float64 `json:"height_cm,omitempty"`
	WeightKg      *float64 `json:"weight_kg,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"`
	GoalKcal      *int32   `json:"goal_kcal,omitempty"`
	Preferences   []string `json:"preferences"`
	Allergies     []string `json:"allergies"`
	Language      *string  `json:"language,omitempty"`
	UpdatedAt     *string  `json:"updated_at,omitempty"`
}

var validSexes = map[string]bool{"male": true, "female": true, "other": true}

var validActivityLevels = map[string]bool{
	"sedentary": true,
	"light":     true,
	"moderate":  true,
	"active":    true,
	"athlete":   true,
}

func validateProfileRequest(req *ProfileRequest) error {
	if req.Age != nil && (*req.Age < 1 || *req.Age > 129) {
		return errors.New("age must be between 1 and 129")
	}
	if req.Sex != nil && !validSexes[*req.Sex] {
		return errors.New("sex must be one of: male, female, other")
	}
	if req.HeightCm != nil && (*req.HeightCm < 30 || *req.HeightCm > 300) {
		return errors.New("height_cm must be between 30 and 300")
	}
	if req.WeightKg != nil && (*req.WeightKg < 2 || *req.WeightKg > 700) {
		return errors.New("weight_kg must be between 2 and 700")
	}
	if req.ActivityLevel != nil && !validActivityLevels[*req.ActivityLevel] {
		return errors.New("activity_level must be one of: sedentary, light, moderate, active, athlete")
	}
	if req.GoalKcal != nil && *req.GoalKcal <= 0 {
		return errors.New("goal_kcal must be positive")
	}
	if len(req.Preferences) > 50 || len(req.Allergies) > 50 {
		return errors.New("preferences and allergies are limited to 50 entries each")
	}
	for _, p := range req.Preferences {
		if len(p) > 100 {
			return fmt.Errorf("preference %q exceeds 100 characters", p[:20])
		}
	}
	for _, a := range req.Allergies {
		if len(a) > 100 {
			return fmt.Errorf("allergy %q exceeds 100 characters", a[:20])
		}
	}
	return nil
}

// mapToProfileResponse converts a database row into the wire representation.
func mapToProfileResponse(row database.ChatProfile) ProfileResponse {
	resp := ProfileResponse{
		UserHandle:    row.UserHandle,
		DisplayName:   utility.TextToStringPtr(row.DisplayName),
		Age:           utility.Int4ToInt32Ptr(row.Age),
		Sex:           utility.TextToStringPtr(row.Sex),
		HeightCm:      utility.NumericToFloatPtr(row.HeightCm),
		WeightKg:      utility.NumericToFloatPtr(row.WeightKg),
		ActivityLevel: utility.TextToStringPtr(row.ActivityLevel),
		GoalKcal:      utility.Int4ToInt32Ptr(row.GoalKcal),
		Preferences:   row.Preferences,
		Allergies:     row.Allergies,
		Language:      utility.TextToStringPtr(row.Language),
	}

	if resp.Preferences == nil {
		resp.Preferences = []string{}
	}
	if resp.Allergies == nil {
		resp.Allergies = []string{}
	}
	if row.UpdatedAt.Valid {
		ts := row.UpdatedAt.Time.Format(time.RFC3339)
		resp.UpdatedAt = &ts
	}

	return resp
}

/* =================================================================================
								PROFILE HANDLERS
=================================================================================*/

// GetProfileHandler retrieves the caller's stored profile.
func GetProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	profile, err := database.CachedProfile(ctx, queries, userHandle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		requestLogger(c).Error().Err(err).Str("user_handle", userHandle).Msg("Failed to load profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	return c.JSON(http.StatusOK, mapToProfileResponse(profile))
}

// UpsertProfileHandler creates or fully replaces the caller's profile.
func UpsertProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind profile request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	if err := validateProfileRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	preferences := req.Preferences
	if preferences == nil {
		preferences = []string{}
	}
	allergies := req.Allergies
	if allergies == nil {
		allergies = []string{}
	}

	row, err := queries.UpsertProfile(ctx, database.UpsertProfileParams{
		UserHandle:    userHandle,
		DisplayName:   utility.StringPtrToText(req.DisplayName),
		Age:           utility.Int32PtrToInt4(req.Age),
		Sex:           utility.StringPtrToText(req.Sex),
		HeightCm:      utility.FloatPtrToNumeric(req.HeightCm),
		WeightKg:      utility.FloatPtrToNumeric(req.WeightKg),
		ActivityLevel: utility.StringPtrToText(req.ActivityLevel),
		GoalKcal:      utility.Int32PtrToInt4(req.GoalKcal),
		Preferences:   preferences,
		Allergies:     allergies,
		Language:      utility.StringPtrToText(req.Language),
	})
	if err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Failed to upsert profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save profile"})
	}

	database.InvalidateProfile(userHandle)

	return c.JSON(http.StatusOK, mapToProfileResponse(row))
}

// DeleteProfileHandler removes the caller's profile along with all sessions,
// meals, and chat history tied to it.
func DeleteProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	if err := queries.DeleteProfile(ctx, userHandle); err != nil {
		requestLogger(c).Error().Err(err).Str("user_handle", userHandle).Msg("Failed to delete profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete profile"})
	}

	database.InvalidateProfile(userHandle)

	return c.JSON(http.StatusOK, map[string]string{"message": "Profile and all associated data deleted"})
}
