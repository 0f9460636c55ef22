package domain

import "time"

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyRoutine   Urgency = "routine"
)

// Valid reports whether the urgency is one of the three triage levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Session status is free-text: "active", "completed", or whichever step
// label the conversation delegate last returned.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type Doctor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	Rating      int    `json:"rating"`
	ReviewCount int    `json:"reviewCount"`
	Location    string `json:"location"`
}

type Appointment struct {
	ID              string            `json:"id"`
	PatientName     string            `json:"patientName"`
	PatientEmail    string            `json:"patientEmail,omitempty"`
	PatientPhone    string            `json:"patientPhone,omitempty"`
	Location        string            `json:"location"`
	Urgency         Urgency           `json:"urgency"`
	DoctorID        string            `json:"doctorId,omitempty"`
	AppointmentDate *time.Time        `json:"appointmentDate,omitempty"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

type ChatSession struct {
	ID            string    `json:"id"`
	PatientName   string    `json:"patientName,omitempty"`
	Location      string    `json:"location,omitempty"`
	Urgency       Urgency   `json:"urgency,omitempty"`
	Status        string    `json:"status"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatTurn is one role/content pair of prior conversation handed to the
// conversation delegate.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ExtractedInfo carries the structured fields the language model claims to
// have inferred from the latest user message.
type ExtractedInfo struct {
	WantsAppointment bool    `json:"wantsAppointment,omitempty"`
	Location         string  `json:"location,omitempty"`
	Urgency          Urgency `json:"urgency,omitempty"`
	PatientName      string  `json:"patientName,omitempty"`
	PatientEmail     string  `json:"patientEmail,omitempty"`
	PatientPhone     string  `json:"patientPhone,omitempty"`
}

// AssistantReply is the delegate's answer to one user message.
type AssistantReply struct {
	Message       string        `json:"message"`
	NextStep      string        `json:"nextStep,omitempty"`
	ExtractedInfo ExtractedInfo `json:"extractedInfo"`
}
