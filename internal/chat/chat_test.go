package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NutriBuddy/internal/chatservice"
	"NutriBuddy/internal/prompt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatContext(t *testing.T, body string, withIdentity bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Real-IP", "198.51.100.7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if withIdentity {
		c.Set("user_handle", "test-user")
	}
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestChatHandler_RequiresIdentity(t *testing.T) {
	c, rec := newChatContext(t, `{"message": "hello"}`, false)

	require.NoError(t, ChatHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "identity")
}

func TestChatHandler_RejectsEmptyMessage(t *testing.T) {
	for _, body := range []string{`{"message": ""}`, `{"message": "   "}`, `{}`} {
		c, rec := newChatContext(t, body, true)

		require.NoError(t, ChatHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.Contains(t, decodeError(t, rec), "Message is required")
	}
}

func TestChatHandler_RejectsMalformedBody(t *testing.T) {
	c, rec := newChatContext(t, `{"message": `, true)

	require.NoError(t, ChatHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Invalid request format")
}

func TestBuildChatResponse(t *testing.T) {
	t.Run("flattens a structured turn", func(t *testing.T) {
		goal := int32(2000)
		result := &chatservice.TurnResult{
			ReplyText: "Logged it!",
			Intent:    prompt.IntentLogFood,
			Reply: &prompt.AssistantReply{
				Intent:          prompt.IntentLogFood,
				FulfillmentText: "Logged it!",
				Data:            json.RawMessage(`{"added_kcal": 230}`),
				FollowUp:        &prompt.FollowUp{ShouldAsk: true, Questions: []string{"Anything else?"}},
			},
			TodayKcal: 730,
			GoalKcal:  &goal,
			Meals: []prompt.MealItem{
				{Name: "eggs", Quantity: "2"},
				{Name: "toast", Quantity: "1 slice"},
			},
		}

		resp := buildChatResponse(result)

		assert.Equal(t, "Logged it!", resp.Reply)
		assert.Equal(t, prompt.IntentLogFood, resp.Intent)
		assert.JSONEq(t, `{"added_kcal": 230}`, string(resp.Data))
		require.NotNil(t, resp.FollowUp)
		assert.True(t, resp.FollowUp.ShouldAsk)
		assert.Equal(t, float64(730), resp.Session.TodayKcal)
		require.NotNil(t, resp.Session.GoalKcal)
		assert.Equal(t, goal, *resp.Session.GoalKcal)
		require.NotNil(t, resp.Session.RemainingKcal)
		assert.Equal(t, float64(1270), *resp.Session.RemainingKcal)
		assert.Equal(t, 2, resp.Session.MealsLogged)
	})

	t.Run("prose turn has no structured payload", func(t *testing.T) {
		result := &chatservice.TurnResult{
			ReplyText: "You are doing great today.",
			TodayKcal: 500,
		}

		resp := buildChatResponse(result)

		assert.Equal(t, "You are doing great today.", resp.Reply)
		assert.Empty(t, resp.Intent)
		assert.Nil(t, resp.Data)
		assert.Nil(t, resp.FollowUp)
		assert.Nil(t, resp.Session.GoalKcal)
		assert.Nil(t, resp.Session.RemainingKcal)
	})
}
