package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"neurointake/internal/util"
	"neurointake/pkg/ai"
	"neurointake/pkg/domain"
)

// Triage classifies free-text symptoms into one of the three urgency levels,
// independently of any chat session. Routine is returned on any failure so a
// down provider never blocks intake.
func (a *Assistant) Triage(ctx context.Context, symptoms string) domain.Urgency {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generator.GenerateChat(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: triageSystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf("Symptoms: %s", symptoms)},
	})
	if err != nil {
		util.LoggerFromContext(ctx).Warn("triage generation failed", "err", err)
		return domain.UrgencyRoutine
	}

	var parsed struct {
		Urgency   string `json:"urgency"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		util.LoggerFromContext(ctx).Warn("triage reply unusable", "err", err)
		return domain.UrgencyRoutine
	}
	urgency := domain.Urgency(parsed.Urgency)
	if !urgency.Valid() {
		return domain.UrgencyRoutine
	}
	return urgency
}
