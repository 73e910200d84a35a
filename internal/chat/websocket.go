package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"NutriBuddy/internal/chatservice"
	"NutriBuddy/internal/utility"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

/* =================================================================================
								WEBSOCKET HANDLERS
=================================================================================*/

// ChatSocketHandler upgrades the connection and serves chat turns over it.
// Inbound text frames carry the same JSON body as POST /chat; replies and
// errors are pushed back as typed events. Browsers cannot set custom headers
// on WebSocket requests, so the identity middleware also accepts the handle
// via the "user" query parameter.
func ChatSocketHandler(c echo.Context) error {
	logger := requestLogger(c)

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade chat socket")
		return err
	}
	defer ws.Close()

	utility.RegisterClient(userHandle, ws)
	defer utility.UnregisterClient(userHandle)

	logger.Info().Str("user_handle", userHandle).Msg("Chat socket connected")

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handleSocketTurn(c, logger, userHandle, data)
	}

	logger.Info().Str("user_handle", userHandle).Msg("Chat socket disconnected")
	return nil
}

// handleSocketTurn runs one conversation turn for a frame received on the
// socket. Turns are sequential per connection; the reply goes back through
// the push hub so REST-triggered events and socket replies share one writer.
func handleSocketTurn(c echo.Context, logger *zerolog.Logger, userHandle string, raw []byte) {
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		pushSocketError(logger, userHandle, "Invalid message format")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		pushSocketError(logger, userHandle, "Message is required")
		return
	}

	if err := utility.CheckIPRateLimit(utility.GetRealIP(c)); err != nil {
		pushSocketError(logger, userHandle, err.Error())
		return
	}

	requireJSON := true
	if req.RequireJSON != nil {
		requireJSON = *req.RequireJSON
	}

	result, err := chatservice.RunChatTurn(c.Request().Context(), logger, queries, aiClient, chatservice.TurnParams{
		UserHandle:  userHandle,
		Message:     req.Message,
		RequireJSON: requireJSON,
		Language:    req.Language,
		Timezone:    req.Timezone,
	})
	if err != nil {
		logger.Error().Err(err).Str("user_handle", userHandle).Msg("Socket chat turn failed")
		pushSocketError(logger, userHandle, "Assistant is temporarily unavailable, please try again")
		return
	}

	pushTurnEvent(logger, userHandle, buildChatResponse(result))
}

func pushSocketError(logger *zerolog.Logger, userHandle, message string) {
	payload, err := json.Marshal(map[string]string{
		"type":  "ERROR",
		"error": message,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to marshal socket error event")
		return
	}
	utility.PushToUser(userHandle, payload)
}
