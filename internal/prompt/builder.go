package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --- Builder Defaults ---
const (
	DefaultUserName = "friend"
	DefaultLanguage = "English"

	// notProvided is substituted for absent context blocks. Never an empty
	// string: the section headers must keep framing something readable.
	notProvided = "Not provided"

	clockLayout = "Monday, 2 January 2006, 15:04"
)

// ErrEmptyMessage is returned when BuildRequest.UserMessage is empty or
// whitespace-only.
var ErrEmptyMessage = errors.New("user message is required")

// BuildMessages assembles the ordered message sequence for one chat turn:
// the fixed system prompt, a per-session context message, the fixed
// few-shot example turns, and the live user utterance last. It is a pure
// function of its input: equal requests always yield equal sequences.
func BuildMessages(req BuildRequest) ([]ChatMessage, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, ErrEmptyMessage
	}

	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = DefaultUserName
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}

	msgs := make([]ChatMessage, 0, len(fewShotTurns)+3)
	msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: buildSessionContext(req, name, language)})
	msgs = append(msgs, fewShotTurns...)
	msgs = append(msgs, ChatMessage{Role: RoleUser, Content: req.UserMessage})

	return msgs, nil
}

// buildSessionContext renders the second system message from the template.
func buildSessionContext(req BuildRequest, name, language string) string {
	directive := JSONOnlyDirective
	if !req.RequireJSON {
		directive = fmt.Sprintf(ProseDirectiveTemplate, language)
	}

	return fmt.Sprintf(
		SessionContextTemplate,
		name,
		formatClock(req.Now, req.Session),
		language,
		formatProfile(req.Profile),
		formatSession(req.Session),
		directive,
	)
}

// formatClock renders the current time in the session timezone when one
// resolves, otherwise as given. A zero time means the caller did not
// supply a clock.
func formatClock(now time.Time, session *SessionState) string {
	if now.IsZero() {
		return notProvided
	}

	if session != nil && session.Timezone != "" {
		if loc, err := time.LoadLocation(session.Timezone); err == nil {
			now = now.In(loc)
		}
	}

	return now.Format(clockLayout)
}

// formatProfile creates a human-readable description of the user's profile
// for the prompt context. Absent fields are simply omitted.
func formatProfile(p *Profile) string {
	if p == nil {
		return notProvided
	}

	var parts []string

	if p.Name != nil {
		parts = append(parts, fmt.Sprintf("Name: %s", *p.Name))
	}

	if p.Age != nil {
		parts = append(parts, fmt.Sprintf("Age: %d", *p.Age))
	}

	if p.Sex != nil {
		parts = append(parts, fmt.Sprintf("Sex: %s", *p.Sex))
	}

	if p.HeightCm != nil {
		parts = append(parts, fmt.Sprintf("Height: %.0f cm", *p.HeightCm))
	}

	if p.WeightKg != nil {
		parts = append(parts, fmt.Sprintf("Weight: %.1f kg", *p.WeightKg))
	}

	if p.ActivityLevel != nil {
		parts = append(parts, fmt.Sprintf("Activity level: %s", *p.ActivityLevel))
	}

	if p.GoalKcal != nil {
		parts = append(parts, fmt.Sprintf("Daily calorie goal: %d kcal", *p.GoalKcal))
	}

	if len(p.Preferences) > 0 {
		parts = append(parts, fmt.Sprintf("Dietary preferences: %s", strings.Join(p.Preferences, ", ")))
	}

	if len(p.Allergies) > 0 {
		parts = append(parts, fmt.Sprintf("Allergies (NEVER suggest these): %s", strings.Join(p.Allergies, ", ")))
	}

	if len(parts) == 0 {
		return notProvided
	}

	return strings.Join(parts, "\n")
}

// formatSession renders today's running totals and the meal log as a
// numbered list the model can refer back to.
func formatSession(s *SessionState) string {
	if s == nil {
		return notProvided
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Calories consumed today: %.0f kcal\n", s.TodayKcal))

	if s.Timezone != "" {
		builder.WriteString(fmt.Sprintf("Timezone: %s\n", s.Timezone))
	}

	if len(s.Meals) == 0 {
		builder.WriteString("Meals logged: none yet")
		return builder.String()
	}

	builder.WriteString("Meals logged:\n")
	for i, m := range s.Meals {
		builder.WriteString(fmt.Sprintf("%d. %s", i+1, m.Name))

		if m.Quantity != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", m.Quantity))
		}

		if m.Kcal != nil {
			builder.WriteString(fmt.Sprintf(" - %.0f kcal", *m.Kcal))
		}

		var macros []string
		if m.Protein != nil {
			macros = append(macros, fmt.Sprintf("protein %.1fg", *m.Protein))
		}
		if m.Carbs != nil {
			macros = append(macros, fmt.Sprintf("carbs %.1fg", *m.Carbs))
		}
		if m.Fat != nil {
			macros = append(macros, fmt.Sprintf("fat %.1fg", *m.Fat))
		}
		if len(macros) > 0 {
			builder.WriteString(fmt.Sprintf(" [%s]", strings.Join(macros, ", ")))
		}

		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}
