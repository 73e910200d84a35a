package prompt

import "encoding/json"

/* =================================================================================
                            ASSISTANT REPLY SCHEMA
    The JSON contract the system prompt instructs the model to honor.
    ParseAssistantJSON does not validate against it; DecodeReply and the
    typed accessors below do the narrowing for callers that act on intents.
=================================================================================*/

// --- Reply Intents ---
const (
	IntentLogFood       = "log_food"
	IntentSuggestMeal   = "suggest_meal"
	IntentGetSnapshot   = "get_snapshot"
	IntentSetGoal       = "set_goal"
	IntentGreet         = "greet"
	IntentFarewell      = "farewell"
	IntentAskClarifying = "ask_clarifying"
	IntentInfo          = "info"
	IntentGeneric       = "generic"
)

// KnownIntent reports whether intent is one of the closed set the schema
// defines. Unknown intents are still rendered as text; they just carry no
// actionable data.
func KnownIntent(intent string) bool {
	switch intent {
	case IntentLogFood, IntentSuggestMeal, IntentGetSnapshot, IntentSetGoal,
		IntentGreet, IntentFarewell, IntentAskClarifying, IntentInfo, IntentGeneric:
		return true
	}
	return false
}

// AssistantReply is the top-level structured reply. Data stays raw until
// an intent-specific accessor decodes it.
type AssistantReply struct {
	Intent          string          `json:"intent"`
	FulfillmentText string          `json:"fulfillment_text"`
	Data            json.RawMessage `json:"data,omitempty"`
	FollowUp        *FollowUp       `json:"follow_up,omitempty"`
}

// FollowUp carries optional questions the assistant wants to ask next.
type FollowUp struct {
	ShouldAsk bool     `json:"should_ask"`
	Questions []string `json:"questions"`
}

// LoggedItem is one food item inside a log_food reply.
type LoggedItem struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity,omitempty"`
	Kcal     float64 `json:"kcal,omitempty"`
}

// LogFoodData is the data payload for intent "log_food".
type LogFoodData struct {
	Items           []LoggedItem `json:"items"`
	AddedKcal       float64      `json:"added_kcal"`
	NewTotalKcal    float64      `json:"new_total_kcal"`
	GoalKcal        float64      `json:"goal_kcal"`
	ProgressPercent float64      `json:"progress_percent"`
}

// MealSuggestion is one idea inside a suggest_meal reply.
type MealSuggestion struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	EstKcal     float64  `json:"est_kcal"`
	ShortPrep   string   `json:"short_prep"`
}

// SuggestMealData is the data payload for intent "suggest_meal".
type SuggestMealData struct {
	Suggestions []MealSuggestion `json:"suggestions"`
}

// SnapshotData is the data payload for intent "get_snapshot".
type SnapshotData struct {
	TodayKcalConsumed float64  `json:"today_kcal_consumed"`
	RemainingKcal     float64  `json:"remaining_kcal"`
	GoalKcal          float64  `json:"goal_kcal"`
	TopItems          []string `json:"top_items"`
}

// SetGoalData is the data payload for intent "set_goal".
type SetGoalData struct {
	NewGoalKcal float64 `json:"new_goal_kcal"`
}

// --- Typed Data Accessors ---

// LogFood decodes the data payload when the intent is "log_food".
func (r *AssistantReply) LogFood() (*LogFoodData, bool) {
	if r.Intent != IntentLogFood || len(r.Data) == 0 {
		return nil, false
	}
	var d LogFoodData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, false
	}
	return &d, true
}

// SuggestMeal decodes the data payload when the intent is "suggest_meal".
func (r *AssistantReply) SuggestMeal() (*SuggestMealData, bool) {
	if r.Intent != IntentSuggestMeal || len(r.Data) == 0 {
		return nil, false
	}
	var d SuggestMealData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, false
	}
	return &d, true
}

// Snapshot decodes the data payload when the intent is "get_snapshot".
func (r *AssistantReply) Snapshot() (*SnapshotData, bool) {
	if r.Intent != IntentGetSnapshot || len(r.Data) == 0 {
		return nil, false
	}
	var d SnapshotData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, false
	}
	return &d, true
}

// SetGoal decodes the data payload when the intent is "set_goal".
func (r *AssistantReply) SetGoal() (*SetGoalData, bool) {
	if r.Intent != IntentSetGoal || len(r.Data) == 0 {
		return nil, false
	}
	var d SetGoalData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, false
	}
	return &d, true
}
