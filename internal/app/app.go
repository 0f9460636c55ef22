// Package app orchestrates the intake flows between the record store and
// the conversation delegate.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neurointake/internal/assistant"
	"neurointake/internal/store"
	"neurointake/internal/util"
	"neurointake/pkg/domain"
)

// App is the core application service.
type App struct {
	store     store.Store
	assistant *assistant.Assistant

	// Per-session locks serialize message posts so two concurrent messages
	// on one session cannot interleave their read-history/generate/write
	// sequences. Sessions are never deleted, so neither are locks.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs the application service.
func New(st store.Store, asst *assistant.Assistant) *App {
	return &App{
		store:     st,
		assistant: asst,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (a *App) sessionLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[sessionID] = lock
	}
	return lock
}

// PostMessageResult is the combined response for one posted message.
type PostMessageResult struct {
	UserMessage      domain.ChatMessage   `json:"userMessage"`
	AssistantMessage domain.ChatMessage   `json:"assistantMessage"`
	NextStep         string               `json:"nextStep,omitempty"`
	ExtractedInfo    domain.ExtractedInfo `json:"extractedInfo"`
}

// PostMessage runs the message lifecycle: persist the user's message, load
// history and session step, invoke the delegate, persist its reply, and
// merge extracted fields into the session. The user message persists even
// when reply generation degrades; a session that does not exist is accepted
// silently (the message is stored, no session fields are merged).
func (a *App) PostMessage(ctx context.Context, sessionID, content string) (PostMessageResult, error) {
	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	userMsg, err := a.store.CreateChatMessage(domain.ChatMessage{
		SessionID: sessionID,
		Content:   content,
		Sender:    domain.SenderUser,
	})
	if err != nil {
		return PostMessageResult{}, fmt.Errorf("persist user message: %w", err)
	}

	messages, err := a.store.ListChatMessages(sessionID)
	if err != nil {
		return PostMessageResult{}, fmt.Errorf("load history: %w", err)
	}
	history := make([]domain.ChatTurn, 0, len(messages))
	for _, msg := range messages {
		if msg.ID == userMsg.ID {
			continue
		}
		role := "user"
		if msg.Sender == domain.SenderAssistant {
			role = "assistant"
		}
		history = append(history, domain.ChatTurn{Role: role, Content: msg.Content})
	}

	session, sessionExists, err := a.store.GetChatSession(sessionID)
	if err != nil {
		return PostMessageResult{}, fmt.Errorf("load session: %w", err)
	}
	currentStep := assistant.DefaultStep
	if sessionExists && session.Status != "" {
		currentStep = session.Status
	}

	reply := a.assistant.Respond(ctx, content, history, currentStep)

	assistantMsg, err := a.store.CreateChatMessage(domain.ChatMessage{
		SessionID: sessionID,
		Content:   reply.Message,
		Sender:    domain.SenderAssistant,
	})
	if err != nil {
		return PostMessageResult{}, fmt.Errorf("persist assistant message: %w", err)
	}

	if sessionExists {
		upd := store.SessionUpdate{}
		if reply.ExtractedInfo.Location != "" {
			upd.Location = &reply.ExtractedInfo.Location
		}
		if reply.ExtractedInfo.Urgency != "" {
			upd.Urgency = &reply.ExtractedInfo.Urgency
		}
		if reply.ExtractedInfo.PatientName != "" {
			upd.PatientName = &reply.ExtractedInfo.PatientName
		}
		if reply.NextStep != "" {
			upd.Status = &reply.NextStep
		}
		if upd != (store.SessionUpdate{}) {
			if _, _, err := a.store.UpdateChatSession(sessionID, upd); err != nil {
				return PostMessageResult{}, fmt.Errorf("merge session fields: %w", err)
			}
		}
	}

	return PostMessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		NextStep:         reply.NextStep,
		ExtractedInfo:    reply.ExtractedInfo,
	}, nil
}

// CreateSession starts a new intake conversation.
func (a *App) CreateSession(session domain.ChatSession) (domain.ChatSession, error) {
	return a.store.CreateChatSession(session)
}

// SessionMessages returns the ordered transcript of one session.
func (a *App) SessionMessages(sessionID string) ([]domain.ChatMessage, error) {
	return a.store.ListChatMessages(sessionID)
}

// Doctors lists the directory, optionally filtered by location substring.
func (a *App) Doctors(location string) ([]domain.Doctor, error) {
	if location == "" {
		return a.store.ListDoctors()
	}
	return a.store.ListDoctorsByLocation(location)
}

// CreateAppointment stores a new appointment. When sessionID names an
// existing chat session, the session is marked completed and linked to the
// appointment; an unknown session is ignored.
func (a *App) CreateAppointment(ctx context.Context, appt domain.Appointment, sessionID string) (domain.Appointment, error) {
	created, err := a.store.CreateAppointment(appt)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	if sessionID != "" {
		status := domain.SessionCompleted
		_, found, err := a.store.UpdateChatSession(sessionID, store.SessionUpdate{
			Status:        &status,
			AppointmentID: &created.ID,
		})
		if err != nil {
			return domain.Appointment{}, fmt.Errorf("complete session: %w", err)
		}
		if !found {
			util.LoggerFromContext(ctx).Warn("appointment referenced unknown session", "session_id", sessionID)
		}
	}
	return created, nil
}

// Appointments lists every stored appointment.
func (a *App) Appointments() ([]domain.Appointment, error) {
	return a.store.ListAppointments()
}

// AppointmentsByDate lists appointments on one calendar day.
func (a *App) AppointmentsByDate(day time.Time) ([]domain.Appointment, error) {
	return a.store.ListAppointmentsByDate(day)
}

// UpdateAppointmentStatus replaces an appointment's status.
func (a *App) UpdateAppointmentStatus(id string, status domain.AppointmentStatus) (domain.Appointment, error) {
	appt, found, err := a.store.UpdateAppointmentStatus(id, status)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	if !found {
		return domain.Appointment{}, ErrAppointmentNotFound
	}
	return appt, nil
}

// Triage classifies symptoms without touching any session.
func (a *App) Triage(ctx context.Context, symptoms string) domain.Urgency {
	return a.assistant.Triage(ctx, symptoms)
}

// Stats summarizes stored records for the admin dashboard.
type Stats struct {
	TotalAppointments int            `json:"totalAppointments"`
	ByStatus          map[string]int `json:"byStatus"`
	ByUrgency         map[string]int `json:"byUrgency"`
	TotalSessions     int            `json:"totalSessions"`
	ActiveSessions    int            `json:"activeSessions"`
	CompletedSessions int            `json:"completedSessions"`
}

// DashboardStats aggregates appointment and session counts.
func (a *App) DashboardStats() (Stats, error) {
	appts, err := a.store.ListAppointments()
	if err != nil {
		return Stats{}, fmt.Errorf("list appointments: %w", err)
	}
	sessions, err := a.store.ListChatSessions()
	if err != nil {
		return Stats{}, fmt.Errorf("list sessions: %w", err)
	}
	stats := Stats{
		TotalAppointments: len(appts),
		ByStatus:          make(map[string]int),
		ByUrgency:         make(map[string]int),
		TotalSessions:     len(sessions),
	}
	for _, appt := range appts {
		stats.ByStatus[string(appt.Status)]++
		stats.ByUrgency[string(appt.Urgency)]++
	}
	for _, s := range sessions {
		switch s.Status {
		case domain.SessionCompleted:
			stats.CompletedSessions++
		case domain.SessionActive:
			stats.ActiveSessions++
		}
	}
	return stats, nil
}
