package store

import "time"

// GORM models used by the Postgres store.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

type DoctorModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Specialty   string `gorm:"not null"`
	Rating      int    `gorm:"not null"`
	ReviewCount int    `gorm:"not null"`
	Location    string `gorm:"not null;index"`
	CreatedAt   time.Time
}

type AppointmentModel struct {
	ID              string `gorm:"primaryKey"`
	PatientName     string `gorm:"not null"`
	PatientEmail    string
	PatientPhone    string
	Location        string     `gorm:"not null"`
	Urgency         string     `gorm:"not null"`
	DoctorID        string     `gorm:"index"`
	AppointmentDate *time.Time `gorm:"index"`
	Status          string     `gorm:"not null"`
	Notes           string
	CreatedAt       time.Time `gorm:"not null"`
}

type ChatSessionModel struct {
	ID            string `gorm:"primaryKey"`
	PatientName   string
	Location      string
	Urgency       string
	Status        string `gorm:"not null"`
	AppointmentID string
	CreatedAt     time.Time `gorm:"not null"`
}

type ChatMessageModel struct {
	ID        string    `gorm:"primaryKey"`
	SessionID string    `gorm:"not null;index"`
	Content   string    `gorm:"not null"`
	Sender    string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index"`
}
