package chat

import (
	"testing"
	"time"

	"NutriBuddy/internal/database"
	"NutriBuddy/internal/utility"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToMessageResponse(t *testing.T) {
	t.Run("assistant row carries its intent", func(t *testing.T) {
		id := uuid.New()
		row := database.StoredMessage{
			MessageID: pgtype.UUID{Bytes: id, Valid: true},
			Role:      "assistant",
			Content:   "Logged it! That adds about 230 kcal.",
			Intent:    utility.StringToText("log_food"),
			CreatedAt: pgtype.Timestamptz{Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Valid: true},
		}

		resp := mapToMessageResponse(row)

		assert.Equal(t, id.String(), resp.MessageID)
		assert.Equal(t, "assistant", resp.Role)
		assert.Equal(t, "Logged it! That adds about 230 kcal.", resp.Content)
		require.NotNil(t, resp.Intent)
		assert.Equal(t, "log_food", *resp.Intent)
		require.NotNil(t, resp.CreatedAt)
		assert.Equal(t, "2025-06-02T09:00:00Z", *resp.CreatedAt)
	})

	t.Run("user row has no intent", func(t *testing.T) {
		row := database.StoredMessage{
			Role:    "user",
			Content: "I had 2 eggs",
		}

		resp := mapToMessageResponse(row)

		assert.Equal(t, "user", resp.Role)
		assert.Nil(t, resp.Intent)
		assert.Nil(t, resp.CreatedAt)
	})
}
