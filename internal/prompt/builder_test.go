package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string   { return &s }
func ptrI32(n int32) *int32     { return &n }
func ptrF64(f float64) *float64 { return &f }

func TestBuildMessages_Shape(t *testing.T) {
	req := BuildRequest{
		UserName:    "Maya",
		UserMessage: "I had a banana",
		RequireJSON: true,
	}

	msgs, err := BuildMessages(req)
	require.NoError(t, err)
	require.Len(t, msgs, FewShotTurnCount()+3)

	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
	assert.Equal(t, RoleSystem, msgs[1].Role)

	last := msgs[len(msgs)-1]
	assert.Equal(t, RoleUser, last.Role)
	assert.Equal(t, "I had a banana", last.Content)

	// Few-shot turns sit between the two system messages and the live turn,
	// in their fixed order.
	for i, turn := range fewShotTurns {
		assert.Equal(t, turn, msgs[2+i])
	}
}

func TestBuildMessages_EmptyUtterance(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := BuildMessages(BuildRequest{})
		require.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := BuildMessages(BuildRequest{UserMessage: "   \n\t "})
		require.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("utterance is not trimmed in output", func(t *testing.T) {
		msgs, err := BuildMessages(BuildRequest{UserMessage: "  hi  "})
		require.NoError(t, err)
		assert.Equal(t, "  hi  ", msgs[len(msgs)-1].Content)
	})
}

func TestBuildMessages_ResponseDirective(t *testing.T) {
	t.Run("strict JSON", func(t *testing.T) {
		msgs, err := BuildMessages(BuildRequest{UserMessage: "hi", RequireJSON: true})
		require.NoError(t, err)

		ctx := msgs[1].Content
		assert.Contains(t, ctx, "ONLY a single valid JSON object")
		assert.NotContains(t, ctx, "Respond conversationally")
	})

	t.Run("permissive carries language", func(t *testing.T) {
		msgs, err := BuildMessages(BuildRequest{UserMessage: "hi", Language: "Spanish"})
		require.NoError(t, err)

		ctx := msgs[1].Content
		assert.Contains(t, ctx, "Respond conversationally in Spanish")
		assert.NotContains(t, ctx, "ONLY a single valid JSON object")
	})

	t.Run("language defaults", func(t *testing.T) {
		msgs, err := BuildMessages(BuildRequest{UserMessage: "hi"})
		require.NoError(t, err)
		assert.Contains(t, msgs[1].Content, "Respond conversationally in "+DefaultLanguage)
	})
}

func TestBuildMessages_Defaults(t *testing.T) {
	msgs, err := BuildMessages(BuildRequest{UserMessage: "hello"})
	require.NoError(t, err)

	ctx := msgs[1].Content
	assert.Contains(t, ctx, "Name: "+DefaultUserName)
	assert.Contains(t, ctx, "Current time: "+notProvided)
	assert.Contains(t, ctx, "=== USER PROFILE ===\n"+notProvided)
	assert.Contains(t, ctx, "=== TODAY'S SESSION ===\n"+notProvided)
}

func TestBuildMessages_Determinism(t *testing.T) {
	req := BuildRequest{
		UserName: "Ko",
		Profile: &Profile{
			Age:         ptrI32(31),
			GoalKcal:    ptrI32(2200),
			Preferences: []string{"vegetarian"},
			Allergies:   []string{"peanuts"},
		},
		Session: &SessionState{
			TodayKcal: 640,
			Meals:     []MealItem{{Name: "oatmeal", Quantity: "1 bowl", Kcal: ptrF64(320)}},
			Timezone:  "Europe/Berlin",
		},
		UserMessage: "what's left for today?",
		RequireJSON: true,
		Now:         time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC),
	}

	first, err := BuildMessages(req)
	require.NoError(t, err)
	second, err := BuildMessages(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildMessages_ContextRendering(t *testing.T) {
	msgs, err := BuildMessages(BuildRequest{
		UserName: "Maya",
		Profile: &Profile{
			Name:          ptrStr("Maya"),
			Age:           ptrI32(29),
			Sex:           ptrStr("female"),
			HeightCm:      ptrF64(168),
			WeightKg:      ptrF64(61.5),
			ActivityLevel: ptrStr("moderate"),
			GoalKcal:      ptrI32(2000),
			Preferences:   []string{"low-carb", "pescatarian"},
			Allergies:     []string{"shellfish", "peanuts"},
		},
		Session: &SessionState{
			TodayKcal: 980,
			Meals: []MealItem{
				{Name: "greek yogurt", Quantity: "1 cup", Kcal: ptrF64(150), Protein: ptrF64(20)},
				{Name: "apple"},
			},
			Timezone: "America/New_York",
		},
		UserMessage: "snapshot please",
		Now:         time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	ctx := msgs[1].Content
	assert.Contains(t, ctx, "Age: 29")
	assert.Contains(t, ctx, "Height: 168 cm")
	assert.Contains(t, ctx, "Weight: 61.5 kg")
	assert.Contains(t, ctx, "Daily calorie goal: 2000 kcal")
	assert.Contains(t, ctx, "Dietary preferences: low-carb, pescatarian")
	assert.Contains(t, ctx, "Allergies (NEVER suggest these): shellfish, peanuts")

	assert.Contains(t, ctx, "Calories consumed today: 980 kcal")
	assert.Contains(t, ctx, "1. greek yogurt (1 cup) - 150 kcal [protein 20.0g]")
	assert.Contains(t, ctx, "2. apple")

	// 16:00 UTC renders as noon in New York.
	assert.Contains(t, ctx, "Monday, 2 June 2025, 12:00")
}

func TestBuildMessages_EmptyProfileRendersPlaceholder(t *testing.T) {
	msgs, err := BuildMessages(BuildRequest{
		UserMessage: "hi",
		Profile:     &Profile{},
	})
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "=== USER PROFILE ===\n"+notProvided)
}

func TestFormatSession_NoMeals(t *testing.T) {
	got := formatSession(&SessionState{TodayKcal: 0})
	assert.Contains(t, got, "Calories consumed today: 0 kcal")
	assert.Contains(t, got, "Meals logged: none yet")
}

func TestFormatClock_UnknownTimezoneFallsBack(t *testing.T) {
	now := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)
	got := formatClock(now, &SessionState{Timezone: "Not/AZone"})
	assert.Equal(t, "Monday, 2 June 2025, 16:00", got)
}

func TestFewShotTurns_AreValidSchemaExamples(t *testing.T) {
	require.True(t, len(fewShotTurns) >= 2)
	require.Equal(t, 0, len(fewShotTurns)%2, "examples must be user/assistant pairs")

	for i, turn := range fewShotTurns {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role, "turn %d", i)
			continue
		}

		assert.Equal(t, RoleAssistant, turn.Role, "turn %d", i)

		v, ok := ParseAssistantJSON(turn.Content)
		require.True(t, ok, "example %d must parse as JSON", i)

		reply, ok := DecodeReply(v)
		require.True(t, ok, "example %d must decode as a reply", i)
		assert.True(t, KnownIntent(reply.Intent), "example %d intent %q", i, reply.Intent)
		assert.NotEmpty(t, reply.FulfillmentText)
		require.NotNil(t, reply.FollowUp)
	}
}

func TestBuildMessages_DoesNotLeakBetweenCalls(t *testing.T) {
	// Mutating a returned sequence must not bleed into the next build.
	msgs, err := BuildMessages(BuildRequest{UserMessage: "first"})
	require.NoError(t, err)
	msgs[2].Content = "tampered"

	again, err := BuildMessages(BuildRequest{UserMessage: "second"})
	require.NoError(t, err)
	assert.Equal(t, fewShotTurns[0].Content, again[2].Content)
}
