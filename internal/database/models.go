package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ChatProfile is the persisted profile for one user handle. All
// descriptive fields are nullable: absence means the user never told us.
type ChatProfile struct {
	UserHandle    string             `json:"user_handle"`
	DisplayName   pgtype.Text        `json:"display_name"`
	Age           pgtype.Int4        `json:"age"`
	Sex           pgtype.Text        `json:"sex"`
	HeightCm      pgtype.Numeric     `json:"height_cm"`
	WeightKg      pgtype.Numeric     `json:"weight_kg"`
	ActivityLevel pgtype.Text        `json:"activity_level"`
	GoalKcal      pgtype.Int4        `json:"goal_kcal"`
	Preferences   []string           `json:"preferences"`
	Allergies     []string           `json:"allergies"`
	Language      pgtype.Text        `json:"language"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

// ChatSession is one calendar day of tracking for a user handle.
type ChatSession struct {
	SessionID   pgtype.UUID        `json:"session_id"`
	UserHandle  string             `json:"user_handle"`
	SessionDate pgtype.Date        `json:"session_date"`
	TodayKcal   pgtype.Numeric     `json:"today_kcal"`
	Timezone    pgtype.Text        `json:"timezone"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

// MealEntry is a single logged food item inside a session.
type MealEntry struct {
	EntryID   pgtype.UUID        `json:"entry_id"`
	SessionID pgtype.UUID        `json:"session_id"`
	FoodName  string             `json:"food_name"`
	Quantity  pgtype.Text        `json:"quantity"`
	Kcal      pgtype.Numeric     `json:"kcal"`
	ProteinG  pgtype.Numeric     `json:"protein_g"`
	CarbsG    pgtype.Numeric     `json:"carbs_g"`
	FatG      pgtype.Numeric     `json:"fat_g"`
	LoggedAt  pgtype.Timestamptz `json:"logged_at"`
}

// StoredMessage is one transcript line. Intent is only set on assistant
// rows that carried a structured reply.
type StoredMessage struct {
	MessageID  pgtype.UUID        `json:"message_id"`
	UserHandle string             `json:"user_handle"`
	Role       string             `json:"role"`
	Content    string             `json:"content"`
	Intent     pgtype.Text        `json:"intent"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}
