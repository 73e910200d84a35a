package chatservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"NutriBuddy/internal/database"
	"NutriBuddy/internal/prompt"
	"NutriBuddy/internal/utility"
)

// TurnParams defines one incoming chat turn from the HTTP handler.
type TurnParams struct {
	UserHandle  string
	Message     string
	RequireJSON bool
	Language    string // overrides the stored profile language for this turn
	Timezone    string // IANA zone from the browser, used to pick "today"
}

// TurnResult is everything the handler needs to render the turn.
type TurnResult struct {
	ReplyText string                 // display text for the user
	Intent    string                 // empty when the reply was plain prose
	Reply     *prompt.AssistantReply // nil when unstructured
	RawText   string                 // model output verbatim

	TodayKcal float64
	GoalKcal  *int32
	Meals     []prompt.MealItem
}

// turnContext is the per-turn state gathered from the database before
// the prompt is built.
type turnContext struct {
	profile    database.ChatProfile
	hasProfile bool
	session    database.ChatSession
	meals      []database.MealEntry
}

// RunChatTurn is the main orchestrator. It gathers context, builds the
// prompt, calls the model, applies any actionable intent to the store,
// persists the transcript, and returns the rendered result.
func RunChatTurn(ctx context.Context, log *zerolog.Logger, q *database.Queries, client Client, params TurnParams) (*TurnResult, error) {
	if err := q.EnsureProfile(ctx, params.UserHandle); err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	tc, err := gatherTurnContext(ctx, log, q, params)
	if err != nil {
		return nil, fmt.Errorf("failed to gather turn context: %w", err)
	}

	req := buildRequestFromContext(tc, params)

	msgs, err := prompt.BuildMessages(req)
	if err != nil {
		return nil, err
	}

	log.Info().Int("messages", len(msgs)).Msg("Sending prompt to chat model...")
	raw, err := client.Complete(ctx, log, msgs, params.RequireJSON)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{
		ReplyText: raw,
		RawText:   raw,
		TodayKcal: utility.NumericToFloat(tc.session.TodayKcal),
		GoalKcal:  utility.Int4ToInt32Ptr(tc.profile.GoalKcal),
		Meals:     mealEntriesToPromptItems(tc.meals),
	}

	if v, ok := prompt.ParseAssistantJSON(raw); ok {
		if reply, ok := prompt.DecodeReply(v); ok {
			result.Reply = reply
			result.Intent = reply.Intent
			if reply.FulfillmentText != "" {
				result.ReplyText = reply.FulfillmentText
			}

			// Intent application is best effort: a failed write is logged
			// and the reply still reaches the user.
			applyIntent(ctx, log, q, params.UserHandle, tc, reply, result)
		}
	}

	persistTranscript(ctx, log, q, params, result)

	return result, nil
}

// gatherTurnContext loads the profile and today's session concurrently.
// Both fetches are best effort; a missing profile row just means an
// anonymous first turn.
func gatherTurnContext(ctx context.Context, log *zerolog.Logger, q *database.Queries, params TurnParams) (*turnContext, error) {
	tc := &turnContext{}

	g, grpCtx := errgroup.WithContext(ctx)

	// mutex protects tc from races when writing results
	var mu sync.Mutex

	// --- Task 1: Profile ---
	g.Go(func() error {
		profile, err := database.CachedProfile(grpCtx, q, params.UserHandle)
		if err == nil {
			mu.Lock()
			tc.profile = profile
			tc.hasProfile = true
			mu.Unlock()
		} else {
			log.Warn().Err(err).Msg("Failed to fetch profile for context")
		}
		return nil
	})

	// --- Task 2: Today's session, then its meal entries ---
	g.Go(func() error {
		session, err := q.GetOrCreateTodaySession(grpCtx, database.GetOrCreateTodaySessionParams{
			UserHandle:  params.UserHandle,
			SessionDate: SessionDate(time.Now(), params.Timezone),
			Timezone:    utility.StringToText(params.Timezone),
		})
		if err != nil {
			return fmt.Errorf("failed to open today's session: %w", err)
		}

		// Sub-query runs inside this goroutine, after the upsert it
		// depends on.
		meals, err := q.ListSessionMeals(grpCtx, session.SessionID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to fetch session meals")
		}

		mu.Lock()
		tc.session = session
		tc.meals = meals
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tc, nil
}

// buildRequestFromContext maps the stored rows onto the builder's input.
func buildRequestFromContext(tc *turnContext, params TurnParams) prompt.BuildRequest {
	req := prompt.BuildRequest{
		UserMessage: params.Message,
		RequireJSON: params.RequireJSON,
		Language:    params.Language,
		Now:         time.Now(),
	}

	if tc.hasProfile {
		req.UserName = tc.profile.DisplayName.String
		req.Profile = profileRowToPrompt(tc.profile)
		if req.Language == "" {
			req.Language = tc.profile.Language.String
		}
	}

	req.Session = &prompt.SessionState{
		TodayKcal: utility.NumericToFloat(tc.session.TodayKcal),
		Meals:     mealEntriesToPromptItems(tc.meals),
		Timezone:  tc.session.Timezone.String,
	}

	return req
}

// applyIntent mutates the store for intents that carry state changes and
// refreshes the result's session snapshot from the returned rows.
func applyIntent(ctx context.Context, log *zerolog.Logger, q *database.Queries, userHandle string, tc *turnContext, reply *prompt.AssistantReply, result *TurnResult) {
	switch reply.Intent {
	case prompt.IntentLogFood:
		data, ok := reply.LogFood()
		if !ok {
			log.Warn().Msg("log_food reply carried no decodable data")
			return
		}

		delta := data.AddedKcal
		var itemSum float64

		for _, item := range data.Items {
			if item.Name == "" {
				continue
			}
			itemSum += item.Kcal

			entry, err := q.InsertMealEntry(ctx, database.InsertMealEntryParams{
				SessionID: tc.session.SessionID,
				FoodName:  item.Name,
				Quantity:  utility.StringToText(item.Quantity),
				Kcal:      utility.FloatToNumeric(item.Kcal),
			})
			if err != nil {
				log.Warn().Err(err).Str("food", item.Name).Msg("Failed to insert meal entry")
				continue
			}
			tc.meals = append(tc.meals, entry)
		}

		// Trust our own arithmetic over the model's total; the model
		// only has to get the per-item estimates right.
		if itemSum > 0 {
			delta = itemSum
		}

		if delta > 0 {
			session, err := q.AddSessionKcal(ctx, database.AddSessionKcalParams{
				SessionID: tc.session.SessionID,
				DeltaKcal: utility.FloatToNumeric(delta),
			})
			if err != nil {
				log.Warn().Err(err).Msg("Failed to update session calories")
			} else {
				tc.session = session
			}
		}

		result.TodayKcal = utility.NumericToFloat(tc.session.TodayKcal)
		result.Meals = mealEntriesToPromptItems(tc.meals)

	case prompt.IntentSetGoal:
		data, ok := reply.SetGoal()
		if !ok || data.NewGoalKcal <= 0 {
			log.Warn().Msg("set_goal reply carried no usable goal")
			return
		}

		goal := int32(data.NewGoalKcal)
		profile, err := q.SetProfileGoal(ctx, database.SetProfileGoalParams{
			UserHandle: userHandle,
			GoalKcal:   pgtype.Int4{Int32: goal, Valid: true},
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to update calorie goal")
			return
		}

		database.InvalidateProfile(userHandle)
		tc.profile = profile
		tc.hasProfile = true
		result.GoalKcal = &goal
	}
}

// persistTranscript stores the user turn and the rendered assistant turn.
// Failures are logged, never surfaced: the reply already exists.
func persistTranscript(ctx context.Context, log *zerolog.Logger, q *database.Queries, params TurnParams, result *TurnResult) {
	if _, err := q.InsertChatMessage(ctx, database.InsertChatMessageParams{
		UserHandle: params.UserHandle,
		Role:       string(prompt.RoleUser),
		Content:    params.Message,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to persist user message")
	}

	if _, err := q.InsertChatMessage(ctx, database.InsertChatMessageParams{
		UserHandle: params.UserHandle,
		Role:       string(prompt.RoleAssistant),
		Content:    result.ReplyText,
		Intent:     utility.StringToText(result.Intent),
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to persist assistant message")
	}
}

/*=================================================================================
                                HELPER FUNCTIONS
=================================================================================*/

// SessionDate resolves "today" in the caller's timezone, falling back to
// UTC when the zone is absent or unknown.
func SessionDate(now time.Time, timezone string) pgtype.Date {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}

	local := now.In(loc)
	y, m, d := local.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// profileRowToPrompt maps the stored profile onto the builder's Profile.
func profileRowToPrompt(row database.ChatProfile) *prompt.Profile {
	return &prompt.Profile{
		Name:          utility.TextToStringPtr(row.DisplayName),
		Age:           utility.Int4ToInt32Ptr(row.Age),
		Sex:           utility.TextToStringPtr(row.Sex),
		HeightCm:      utility.NumericToFloatPtr(row.HeightCm),
		WeightKg:      utility.NumericToFloatPtr(row.WeightKg),
		ActivityLevel: utility.TextToStringPtr(row.ActivityLevel),
		GoalKcal:      utility.Int4ToInt32Ptr(row.GoalKcal),
		Preferences:   row.Preferences,
		Allergies:     row.Allergies,
	}
}

// mealEntriesToPromptItems maps stored meal rows onto the builder's items.
func mealEntriesToPromptItems(entries []database.MealEntry) []prompt.MealItem {
	items := make([]prompt.MealItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, prompt.MealItem{
			Name:     e.FoodName,
			Quantity: e.Quantity.String,
			Kcal:     utility.NumericToFloatPtr(e.Kcal),
			Protein:  utility.NumericToFloatPtr(e.ProteinG),
			Carbs:    utility.NumericToFloatPtr(e.CarbsG),
			Fat:      utility.NumericToFloatPtr(e.FatG),
		})
	}
	return items
}
