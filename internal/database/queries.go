package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ensureProfile = `
INSERT INTO chat_profiles (user_handle)
VALUES ($1)
ON CONFLICT (user_handle) DO NOTHING
`

// EnsureProfile creates an empty profile row for a handle on first
// contact, so sessions and messages always have a parent to hang off.
func (q *Queries) EnsureProfile(ctx context.Context, userHandle string) error {
	_, err := q.db.Exec(ctx, ensureProfile, userHandle)
	return err
}

const getProfile = `
SELECT user_handle, display_name, age, sex, height_cm, weight_kg, activity_level,
       goal_kcal, preferences, allergies, language, created_at, updated_at
FROM chat_profiles
WHERE user_handle = $1
`

func (q *Queries) GetProfile(ctx context.Context, userHandle string) (ChatProfile, error) {
	row := q.db.QueryRow(ctx, getProfile, userHandle)
	var i ChatProfile
	err := row.Scan(
		&i.UserHandle,
		&i.DisplayName,
		&i.Age,
		&i.Sex,
		&i.HeightCm,
		&i.WeightKg,
		&i.ActivityLevel,
		&i.GoalKcal,
		&i.Preferences,
		&i.Allergies,
		&i.Language,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertProfile = `
INSERT INTO chat_profiles (user_handle, display_name, age, sex, height_cm, weight_kg,
                           activity_level, goal_kcal, preferences, allergies, language)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_handle) DO UPDATE SET
    display_name   = EXCLUDED.display_name,
    age            = EXCLUDED.age,
    sex            = EXCLUDED.sex,
    height_cm      = EXCLUDED.height_cm,
    weight_kg      = EXCLUDED.weight_kg,
    activity_level = EXCLUDED.activity_level,
    goal_kcal      = EXCLUDED.goal_kcal,
    preferences    = EXCLUDED.preferences,
    allergies      = EXCLUDED.allergies,
    language       = EXCLUDED.language,
    updated_at     = now()
RETURNING user_handle, display_name, age, sex, height_cm, weight_kg, activity_level,
          goal_kcal, preferences, allergies, language, created_at, updated_at
`

type UpsertProfileParams struct {
	UserHandle    string
	DisplayName   pgtype.Text
	Age           pgtype.Int4
	Sex           pgtype.Text
	HeightCm      pgtype.Numeric
	WeightKg      pgtype.Numeric
	ActivityLevel pgtype.Text
	GoalKcal      pgtype.Int4
	Preferences   []string
	Allergies     []string
	Language      pgtype.Text
}

// UpsertProfile replaces the stored profile wholesale. Absent fields in
// the params overwrite with NULL; this is a full PUT, not a merge.
func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (ChatProfile, error) {
	row := q.db.QueryRow(ctx, upsertProfile,
		arg.UserHandle,
		arg.DisplayName,
		arg.Age,
		arg.Sex,
		arg.HeightCm,
		arg.WeightKg,
		arg.ActivityLevel,
		arg.GoalKcal,
		arg.Preferences,
		arg.Allergies,
		arg.Language,
	)
	var i ChatProfile
	err := row.Scan(
		&i.UserHandle,
		&i.DisplayName,
		&i.Age,
		&i.Sex,
		&i.HeightCm,
		&i.WeightKg,
		&i.ActivityLevel,
		&i.GoalKcal,
		&i.Preferences,
		&i.Allergies,
		&i.Language,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setProfileGoal = `
UPDATE chat_profiles
SET goal_kcal = $2, updated_at = now()
WHERE user_handle = $1
RETURNING user_handle, display_name, age, sex, height_cm, weight_kg, activity_level,
          goal_kcal, preferences, allergies, language, created_at, updated_at
`

type SetProfileGoalParams struct {
	UserHandle string
	GoalKcal   pgtype.Int4
}

func (q *Queries) SetProfileGoal(ctx context.Context, arg SetProfileGoalParams) (ChatProfile, error) {
	row := q.db.QueryRow(ctx, setProfileGoal, arg.UserHandle, arg.GoalKcal)
	var i ChatProfile
	err := row.Scan(
		&i.UserHandle,
		&i.DisplayName,
		&i.Age,
		&i.Sex,
		&i.HeightCm,
		&i.WeightKg,
		&i.ActivityLevel,
		&i.GoalKcal,
		&i.Preferences,
		&i.Allergies,
		&i.Language,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteProfile = `
DELETE FROM chat_profiles
WHERE user_handle = $1
`

// DeleteProfile removes the profile row; sessions, meal entries and
// transcript rows cascade with it.
func (q *Queries) DeleteProfile(ctx context.Context, userHandle string) error {
	_, err := q.db.Exec(ctx, deleteProfile, userHandle)
	return err
}

const getOrCreateTodaySession = `
INSERT INTO chat_sessions (user_handle, session_date, timezone)
VALUES ($1, $2, $3)
ON CONFLICT (user_handle, session_date) DO UPDATE SET
    timezone   = COALESCE(EXCLUDED.timezone, chat_sessions.timezone),
    updated_at = now()
RETURNING session_id, user_handle, session_date, today_kcal, timezone, created_at, updated_at
`

type GetOrCreateTodaySessionParams struct {
	UserHandle  string
	SessionDate pgtype.Date
	Timezone    pgtype.Text
}

// GetOrCreateTodaySession upserts the per-day session row and returns it.
// The DO UPDATE arm exists so RETURNING always yields the row.
func (q *Queries) GetOrCreateTodaySession(ctx context.Context, arg GetOrCreateTodaySessionParams) (ChatSession, error) {
	row := q.db.QueryRow(ctx, getOrCreateTodaySession, arg.UserHandle, arg.SessionDate, arg.Timezone)
	var i ChatSession
	err := row.Scan(
		&i.SessionID,
		&i.UserHandle,
		&i.SessionDate,
		&i.TodayKcal,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const addSessionKcal = `
UPDATE chat_sessions
SET today_kcal = today_kcal + $2, updated_at = now()
WHERE session_id = $1
RETURNING session_id, user_handle, session_date, today_kcal, timezone, created_at, updated_at
`

type AddSessionKcalParams struct {
	SessionID pgtype.UUID
	DeltaKcal pgtype.Numeric
}

func (q *Queries) AddSessionKcal(ctx context.Context, arg AddSessionKcalParams) (ChatSession, error) {
	row := q.db.QueryRow(ctx, addSessionKcal, arg.SessionID, arg.DeltaKcal)
	var i ChatSession
	err := row.Scan(
		&i.SessionID,
		&i.UserHandle,
		&i.SessionDate,
		&i.TodayKcal,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const resetSessionKcal = `
UPDATE chat_sessions
SET today_kcal = 0, updated_at = now()
WHERE session_id = $1
RETURNING session_id, user_handle, session_date, today_kcal, timezone, created_at, updated_at
`

func (q *Queries) ResetSessionKcal(ctx context.Context, sessionID pgtype.UUID) (ChatSession, error) {
	row := q.db.QueryRow(ctx, resetSessionKcal, sessionID)
	var i ChatSession
	err := row.Scan(
		&i.SessionID,
		&i.UserHandle,
		&i.SessionDate,
		&i.TodayKcal,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteSessionMeals = `
DELETE FROM meal_entries
WHERE session_id = $1
`

func (q *Queries) DeleteSessionMeals(ctx context.Context, sessionID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteSessionMeals, sessionID)
	return err
}

const insertMealEntry = `
INSERT INTO meal_entries (session_id, food_name, quantity, kcal, protein_g, carbs_g, fat_g)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING entry_id, session_id, food_name, quantity, kcal, protein_g, carbs_g, fat_g, logged_at
`

type InsertMealEntryParams struct {
	SessionID pgtype.UUID
	FoodName  string
	Quantity  pgtype.Text
	Kcal      pgtype.Numeric
	ProteinG  pgtype.Numeric
	CarbsG    pgtype.Numeric
	FatG      pgtype.Numeric
}

func (q *Queries) InsertMealEntry(ctx context.Context, arg InsertMealEntryParams) (MealEntry, error) {
	row := q.db.QueryRow(ctx, insertMealEntry,
		arg.SessionID,
		arg.FoodName,
		arg.Quantity,
		arg.Kcal,
		arg.ProteinG,
		arg.CarbsG,
		arg.FatG,
	)
	var i MealEntry
	err := row.Scan(
		&i.EntryID,
		&i.SessionID,
		&i.FoodName,
		&i.Quantity,
		&i.Kcal,
		&i.ProteinG,
		&i.CarbsG,
		&i.FatG,
		&i.LoggedAt,
	)
	return i, err
}

const listSessionMeals = `
SELECT entry_id, session_id, food_name, quantity, kcal, protein_g, carbs_g, fat_g, logged_at
FROM meal_entries
WHERE session_id = $1
ORDER BY logged_at ASC
`

func (q *Queries) ListSessionMeals(ctx context.Context, sessionID pgtype.UUID) ([]MealEntry, error) {
	rows, err := q.db.Query(ctx, listSessionMeals, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MealEntry
	for rows.Next() {
		var i MealEntry
		if err := rows.Scan(
			&i.EntryID,
			&i.SessionID,
			&i.FoodName,
			&i.Quantity,
			&i.Kcal,
			&i.ProteinG,
			&i.CarbsG,
			&i.FatG,
			&i.LoggedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertChatMessage = `
INSERT INTO chat_messages (user_handle, role, content, intent)
VALUES ($1, $2, $3, $4)
RETURNING message_id, user_handle, role, content, intent, created_at
`

type InsertChatMessageParams struct {
	UserHandle string
	Role       string
	Content    string
	Intent     pgtype.Text
}

func (q *Queries) InsertChatMessage(ctx context.Context, arg InsertChatMessageParams) (StoredMessage, error) {
	row := q.db.QueryRow(ctx, insertChatMessage, arg.UserHandle, arg.Role, arg.Content, arg.Intent)
	var i StoredMessage
	err := row.Scan(
		&i.MessageID,
		&i.UserHandle,
		&i.Role,
		&i.Content,
		&i.Intent,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentMessages = `
SELECT message_id, user_handle, role, content, intent, created_at
FROM (
    SELECT message_id, user_handle, role, content, intent, created_at
    FROM chat_messages
    WHERE user_handle = $1
    ORDER BY created_at DESC
    LIMIT $2
) recent
ORDER BY created_at ASC
`

type ListRecentMessagesParams struct {
	UserHandle string
	LimitCount int32
}

// ListRecentMessages returns the newest LimitCount transcript rows in
// chronological order.
func (q *Queries) ListRecentMessages(ctx context.Context, arg ListRecentMessagesParams) ([]StoredMessage, error) {
	rows, err := q.db.Query(ctx, listRecentMessages, arg.UserHandle, arg.LimitCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StoredMessage
	for rows.Next() {
		var i StoredMessage
		if err := rows.Scan(
			&i.MessageID,
			&i.UserHandle,
			&i.Role,
			&i.Content,
			&i.Intent,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteChatHistory = `
DELETE FROM chat_messages
WHERE user_handle = $1
`

func (q *Queries) DeleteChatHistory(ctx context.Context, userHandle string) error {
	_, err := q.db.Exec(ctx, deleteChatHistory, userHandle)
	return err
}
