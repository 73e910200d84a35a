package chat

import (
	"testing"
	"time"

	"NutriBuddy/internal/database"
	"NutriBuddy/internal/utility"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func i32Ptr(n int32) *int32 { return &n }

func f64Ptr(f float64) *float64 { return &f }

func TestValidateProfileRequest(t *testing.T) {
	t.Run("accepts a full valid profile", func(t *testing.T) {
		req := &ProfileRequest{
			DisplayName:   strPtr("Maria"),
			Age:           i32Ptr(31),
			Sex:           strPtr("female"),
			HeightCm:      f64Ptr(165),
			WeightKg:      f64Ptr(62),
			ActivityLevel: strPtr("moderate"),
			GoalKcal:      i32Ptr(2000),
			Preferences:   []string{"vegetarian"},
			Allergies:     []string{"peanuts"},
			Language:      strPtr("Spanish"),
		}
		assert.NoError(t, validateProfileRequest(req))
	})

	t.Run("accepts an empty profile", func(t *testing.T) {
		assert.NoError(t, validateProfileRequest(&ProfileRequest{}))
	})

	cases := []struct {
		name string
		req  ProfileRequest
		want string
	}{
		{"age too low", ProfileRequest{Age: i32Ptr(0)}, "age"},
		{"age too high", ProfileRequest{Age: i32Ptr(130)}, "age"},
		{"unknown sex", ProfileRequest{Sex: strPtr("robot")}, "sex"},
		{"height out of range", ProfileRequest{HeightCm: f64Ptr(5)}, "height_cm"},
		{"weight out of range", ProfileRequest{WeightKg: f64Ptr(1200)}, "weight_kg"},
		{"unknown activity level", ProfileRequest{ActivityLevel: strPtr("hyperactive")}, "activity_level"},
		{"non-positive goal", ProfileRequest{GoalKcal: i32Ptr(0)}, "goal_kcal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProfileRequest(&tc.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMapToProfileResponse(t *testing.T) {
	t.Run("maps a populated row", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		row := database.ChatProfile{
			UserHandle:    "maria-7",
			DisplayName:   utility.StringToText("Maria"),
			Age:           pgtype.Int4{Int32: 31, Valid: true},
			Sex:           utility.StringToText("female"),
			HeightCm:      utility.FloatToNumeric(165),
			WeightKg:      utility.FloatToNumeric(62.5),
			ActivityLevel: utility.StringToText("moderate"),
			GoalKcal:      pgtype.Int4{Int32: 2000, Valid: true},
			Preferences:   []string{"vegetarian"},
			Allergies:     []string{"peanuts"},
			Language:      utility.StringToText("Spanish"),
			UpdatedAt:     pgtype.Timestamptz{Time: now, Valid: true},
		}

		resp := mapToProfileResponse(row)

		assert.Equal(t, "maria-7", resp.UserHandle)
		require.NotNil(t, resp.DisplayName)
		assert.Equal(t, "Maria", *resp.DisplayName)
		require.NotNil(t, resp.Age)
		assert.Equal(t, int32(31), *resp.Age)
		require.NotNil(t, resp.WeightKg)
		assert.Equal(t, 62.5, *resp.WeightKg)
		require.NotNil(t, resp.GoalKcal)
		assert.Equal(t, int32(2000), *resp.GoalKcal)
		assert.Equal(t, []string{"vegetarian"}, resp.Preferences)
		assert.Equal(t, []string{"peanuts"}, resp.Allergies)
		require.NotNil(t, resp.UpdatedAt)
		assert.Equal(t, "2025-06-02T10:00:00Z", *resp.UpdatedAt)
	})

	t.Run("bare row yields nil optionals and empty lists", func(t *testing.T) {
		resp := mapToProfileResponse(database.ChatProfile{UserHandle: "ghost"})

		assert.Equal(t, "ghost", resp.UserHandle)
		assert.Nil(t, resp.DisplayName)
		assert.Nil(t, resp.Age)
		assert.Nil(t, resp.GoalKcal)
		assert.NotNil(t, resp.Preferences)
		assert.Empty(t, resp.Preferences)
		assert.NotNil(t, resp.Allergies)
		assert.Empty(t, resp.Allergies)
		assert.Nil(t, resp.UpdatedAt)
	})
}
