// Package assistant is the conversation delegate: it turns a user's message
// plus session context into a reply, an optional next intake step, and any
// structured fields the language model extracted along the way.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"neurointake/internal/util"
	"neurointake/pkg/ai"
	"neurointake/pkg/domain"
)

const defaultTimeout = 30 * time.Second

var validate = validator.New()

// rawReply mirrors the JSON contract the system prompt asks the model for.
// Fields that fail validation are dropped individually; a reply that does
// not even parse falls back entirely.
type rawReply struct {
	Message       string           `json:"message"`
	NextStep      string           `json:"nextStep" validate:"omitempty,oneof=greeting location urgency appointment scheduling complete"`
	ExtractedInfo rawExtractedInfo `json:"extractedInfo"`
}

type rawExtractedInfo struct {
	WantsAppointment bool   `json:"wantsAppointment"`
	Location         string `json:"location"`
	Urgency          string `json:"urgency" validate:"omitempty,oneof=emergency urgent routine"`
	PatientName      string `json:"patientName"`
	PatientEmail     string `json:"patientEmail" validate:"omitempty,email"`
	PatientPhone     string `json:"patientPhone"`
}

// Assistant delegates conversation understanding to a TextGenerator.
type Assistant struct {
	generator ai.TextGenerator
	timeout   time.Duration
	now       func() time.Time

	// rand.Rand is not safe for concurrent use; requests on different
	// sessions generate slots in parallel.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs the delegate. A non-positive timeout falls back to 30s,
// bounding every outbound call so a hung provider cannot stall a request
// forever.
func New(generator ai.TextGenerator, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Assistant{
		generator: generator,
		timeout:   timeout,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Respond processes one user message. Errors from the external service are
// absorbed here: the caller always gets a usable reply, degraded to a fixed
// apology with no next step and no extracted fields when the service is
// down or returns garbage.
func (a *Assistant) Respond(ctx context.Context, message string, history []domain.ChatTurn, currentStep string) domain.AssistantReply {
	if currentStep == "" {
		currentStep = DefaultStep
	}

	system := fmt.Sprintf(systemPromptTemplate, currentStep)
	if wantsScheduling(message, currentStep) {
		a.rngMu.Lock()
		slots := weeklySlots(a.now(), a.rng)
		a.rngMu.Unlock()
		system += slotsPromptHeader + formatSlots(slots)
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system})
	for _, turn := range history {
		role := ai.RoleUser
		if turn.Role == ai.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: message})

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generator.GenerateChat(ctx, messages)
	if err != nil {
		util.LoggerFromContext(ctx).Warn("assistant generation failed", "err", err)
		return fallbackReply()
	}

	reply, err := parseReply(text)
	if err != nil {
		util.LoggerFromContext(ctx).Warn("assistant reply unusable", "err", err)
		return fallbackReply()
	}
	return reply
}

func fallbackReply() domain.AssistantReply {
	return domain.AssistantReply{Message: FallbackMessage}
}

// parseReply decodes and validates the model's JSON. Individual fields that
// fail validation (unknown step label, bogus urgency, malformed email) are
// dropped rather than trusted into persisted session state.
func parseReply(text string) (domain.AssistantReply, error) {
	var raw rawReply
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.AssistantReply{}, fmt.Errorf("decode reply: %w", err)
	}

	if err := validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.AssistantReply{}, fmt.Errorf("validate reply: %w", err)
		}
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "NextStep":
				raw.NextStep = ""
			case "Urgency":
				raw.ExtractedInfo.Urgency = ""
			case "PatientEmail":
				raw.ExtractedInfo.PatientEmail = ""
			}
		}
	}

	reply := domain.AssistantReply{
		Message:  raw.Message,
		NextStep: raw.NextStep,
		ExtractedInfo: domain.ExtractedInfo{
			WantsAppointment: raw.ExtractedInfo.WantsAppointment,
			Location:         raw.ExtractedInfo.Location,
			Urgency:          domain.Urgency(raw.ExtractedInfo.Urgency),
			PatientName:      raw.ExtractedInfo.PatientName,
			PatientEmail:     raw.ExtractedInfo.PatientEmail,
			PatientPhone:     raw.ExtractedInfo.PatientPhone,
		},
	}
	if reply.Message == "" {
		reply.Message = DefaultReplyMessage
	}
	return reply, nil
}
