package prompt

import "time"

// Role tags the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged turn in the sequence sent to the chat model.
// Order matters: the slice returned by BuildMessages is forwarded verbatim.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Profile holds what the user has told us about themselves.
// Every field is optional. A nil pointer means "unknown" and is rendered
// as such in the prompt, never silently defaulted to a number.
type Profile struct {
	Name *string `json:"name,omitempty"`
	Age  *int32  `json:"age,omitempty"`

	// Sex is one of "male", "female", "other".
	Sex *string `json:"sex,omitempty"`

	HeightCm *float64 `json:"height_cm,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`

	// ActivityLevel is one of "sedentary", "light", "moderate", "active", "athlete".
	ActivityLevel *string `json:"activity_level,omitempty"`

	// GoalKcal is the user's daily calorie target.
	GoalKcal *int32 `json:"goal_kcal,omitempty"`

	// Preferences are free-form dietary tags ("vegetarian", "low-carb", "halal").
	Preferences []string `json:"preferences,omitempty"`

	// Allergies the model must never suggest around.
	Allergies []string `json:"allergies,omitempty"`
}

// MealItem is a single logged food item. Items are plain data with no
// identity beyond their field values.
type MealItem struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity,omitempty"`
	Kcal     *float64 `json:"kcal,omitempty"`
	Protein  *float64 `json:"protein_g,omitempty"`
	Carbs    *float64 `json:"carbs_g,omitempty"`
	Fat      *float64 `json:"fat_g,omitempty"`
}

// SessionState carries the ephemeral per-day facts the model needs to
// answer "how am I doing today". The caller mutates it between turns;
// the builder only reads it.
type SessionState struct {
	TodayKcal float64    `json:"today_kcal"`
	Meals     []MealItem `json:"meals"`
	Timezone  string     `json:"timezone,omitempty"`
}

// BuildRequest is the Prompt Builder's full input. UserMessage is the only
// required field. Clock values are passed in here rather than read from
// globals so the builder stays a pure function of its arguments.
type BuildRequest struct {
	// UserName is the display name woven into the context block.
	// Empty falls back to DefaultUserName.
	UserName string

	Profile *Profile
	Session *SessionState

	// UserMessage is the live utterance. It always becomes the final
	// message of the built sequence, byte for byte.
	UserMessage string

	// RequireJSON switches the trailing response directive between
	// "JSON only" and "conversational text in Language".
	RequireJSON bool

	// Language the assistant should answer in when RequireJSON is false.
	// Empty falls back to DefaultLanguage.
	Language string

	// Now is the wall-clock moment rendered into the context block,
	// shifted into the session timezone when one is set. The zero value
	// renders as "Not provided".
	Now time.Time
}
