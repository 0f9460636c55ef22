package store

import (
	"time"

	"neurointake/pkg/domain"
)

// SessionUpdate carries a partial chat-session mutation. Nil fields are
// left untouched by UpdateChatSession.
type SessionUpdate struct {
	PatientName   *string
	Location      *string
	Urgency       *domain.Urgency
	Status        *string
	AppointmentID *string
}

// Store defines persistence operations for the intake entities. Identifiers
// and creation timestamps are assigned by the store, never by callers.
type Store interface {
	// users
	CreateUser(username, passwordHash string) (domain.User, error)
	GetUser(id string) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)

	// doctors
	CreateDoctor(doctor domain.Doctor) (domain.Doctor, error)
	ListDoctors() ([]domain.Doctor, error)
	// ListDoctorsByLocation matches by case-insensitive substring.
	ListDoctorsByLocation(location string) ([]domain.Doctor, error)

	// appointments
	CreateAppointment(appt domain.Appointment) (domain.Appointment, error)
	ListAppointments() ([]domain.Appointment, error)
	// ListAppointmentsByDate matches the calendar day (UTC), ignoring
	// time-of-day.
	ListAppointmentsByDate(day time.Time) ([]domain.Appointment, error)
	UpdateAppointmentStatus(id string, status domain.AppointmentStatus) (domain.Appointment, bool, error)

	// chat sessions
	CreateChatSession(session domain.ChatSession) (domain.ChatSession, error)
	GetChatSession(id string) (domain.ChatSession, bool, error)
	ListChatSessions() ([]domain.ChatSession, error)
	UpdateChatSession(id string, upd SessionUpdate) (domain.ChatSession, bool, error)

	// chat messages
	CreateChatMessage(msg domain.ChatMessage) (domain.ChatMessage, error)
	// ListChatMessages returns a session's messages ordered by timestamp
	// ascending.
	ListChatMessages(sessionID string) ([]domain.ChatMessage, error)
}

// sameDay reports whether both instants fall on the same UTC calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
