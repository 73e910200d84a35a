package chat

import (
	"net/http"
	"time"

	"NutriBuddy/internal/database"
	"NutriBuddy/internal/utility"
	"github.com/labstack/echo/v4"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// MessageResponse is one transcript line in chronological order.
type MessageResponse struct {
	MessageID string  `json:"message_id"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Intent    *string `json:"intent,omitempty"`
	CreatedAt *string `json:"created_at,omitempty"`
}

func mapToMessageResponse(row database.StoredMessage) MessageResponse {
	messageID, _ := utility.PgtypeUUIDToString(row.MessageID)
	resp := MessageResponse{
		MessageID: messageID,
		Role:      row.Role,
		Content:   row.Content,
		Intent:    utility.TextToStringPtr(row.Intent),
	}
	if row.CreatedAt.Valid {
		ts := row.CreatedAt.Time.Format(time.RFC3339)
		resp.CreatedAt = &ts
	}
	return resp
}

/* =================================================================================
								HISTORY HANDLERS
=================================================================================*/

// GetChatHistoryHandler returns the caller's most recent transcript lines,
// oldest first. The "limit" query parameter caps how many are returned.
func GetChatHistoryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	limit := utility.ParseIntParam(c, "limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	limit = utility.Min(limit, maxHistoryLimit)

	rows, err := queries.ListRecentMessages(ctx, database.ListRecentMessagesParams{
		UserHandle: userHandle,
		LimitCount: int32(limit),
	})
	if err != nil {
		requestLogger(c).Error().Err(err).Str("user_handle", userHandle).Msg("Failed to load chat history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load chat history"})
	}

	messages := make([]MessageResponse, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, mapToMessageResponse(row))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// ClearChatHistoryHandler deletes the caller's entire transcript. Profiles,
// sessions, and logged meals are untouched.
func ClearChatHistoryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userHandle, err := utility.GetUserHandleFromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User identity is required"})
	}

	if err := queries.DeleteChatHistory(ctx, userHandle); err != nil {
		requestLogger(c).Error().Err(err).Str("user_handle", userHandle).Msg("Failed to clear chat history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to clear chat history"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Chat history cleared"})
}
