/*
Package chat implements the conversational surface of NutriBuddy: the chat
turn endpoint, per-user profile and daily session management, transcript
history, and the live WebSocket feed.
*/
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"NutriBuddy/internal/chatservice"
	"NutriBuddy/internal/database"
	"NutriBuddy/internal/prompt"
	"NutriBuddy/internal/utility"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	queries  *database.Queries
	aiClient chatservice.Client
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest carries a single user utterance and its delivery preferences.
type ChatRequest struct {
	Message     string `json:"message" form:"message"`
	RequireJSON *bool  `json:"require_json,omitempty"` // Defaults to true when omitted.
	Language    string `json:"language,omitempty"`
	Timezone    string `json:"timezone,omitempty"` // IANA name, e.g. "Europe/Madrid".
}

// SessionSummary reflects the day's running totals after the turn was applied.
type SessionSummary struct {
	TodayKcal     float64  `json:"today_kcal"`
	GoalKcal      *int32   `json:"goal_kcal,omitempty"`
	RemainingKcal *float64 `json:"remaining_kcal,omitempty"`
	MealsLogged   int      `json:"meals_logged"`
}

// ChatResponse is the assistant's answer plus the structured payload recovered
// from it, if any.
type ChatResponse struct {
	Reply    string           `json:"reply"`
	Intent   string           `json:"intent,omitempty"`
	Data     json.RawMessage  `json:"data,omitempty"`
	FollowUp *prompt.FollowUp `json:"follow_up,omitempty"`
	Session  SessionSummary   `json:"session"`
}

/* =================================================================================
								INITIALIZATION
=================================================================================*/

// InitChatPackage prepares the package for operation by configuring database
// queries and the upstream AI client.
func InitChatPackage(dbpool *pgxpool.Pool) error {
	queries = database.New(dbpool)

	client, err := chatservice.NewClient()
	if err != nil {
		return err
	}
	aiClient = client

	log.Info().Msg("Chat package initialized.")
	return nil
}

// requestLogger returns the request-scoped logger installed by the server
// middleware, falling back to the global logger outside a request.
func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

/* =================================================================================
								CHAT HANDLERS
=================================================================================*/

// ChatHandler runs one full conversation turn: it assembles the prompt from the
// user's stored context, calls the model, applies any recognized intent to the
// day's session, and persists the exchange.
func ChatHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	if err := utility.CheckIPRateLimit(utility.GetRealIP(c)); err != nil {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind chat request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	requireJSON := true
	if req.RequireJSON != nil {
		requireJSON = *req.RequireJSON
	}

	result, err := chatservice.RunChatTurn(ctx, logger, queries, aiClient, chatservice.TurnParams{
		UserHandle:  userHandle,
		Message:     req.Message,
		RequireJSON: requireJSON,
		Language:    req.Language,
		Timezone:    req.Timezone,
	})
	if err != nil {
		if errors.Is(err, prompt.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
		}
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Chat turn failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Assistant is temporarily unavailable, please try again"})
	}

	resp := buildChatResponse(result)

	// Mirror the turn onto the user's live socket so other open tabs stay in sync.
	pushTurnEvent(logger, userHandle, resp)

	return c.JSON(http.StatusOK, resp)
}

// buildChatResponse flattens a turn result into the wire response.
func buildChatResponse(result *chatservice.TurnResult) ChatResponse {
	resp := ChatResponse{
		Reply:  result.ReplyText,
		Intent: result.Intent,
		Session: SessionSummary{
			TodayKcal:   result.TodayKcal,
			GoalKcal:    result.GoalKcal,
			MealsLogged: len(result.Meals),
		},
	}

	if result.Reply != nil {
		resp.Data = result.Reply.Data
		resp.FollowUp = result.Reply.FollowUp
	}

	if result.GoalKcal != nil {
		remaining := float64(*result.GoalKcal) - result.TodayKcal
		resp.Session.RemainingKcal = &remaining
	}

	return resp
}

// pushTurnEvent broadcasts the finished turn to the user's WebSocket, if one
// is connected. Delivery is best-effort.
func pushTurnEvent(logger *zerolog.Logger, userHandle string, resp ChatResponse) {
	event := map[string]interface{}{
		"type": "CHAT_TURN",
		"data": resp,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to marshal chat turn event")
		return
	}

	utility.PushToUser(userHandle, payload)
}
