package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"neurointake/internal/util"
	"neurointake/pkg/domain"
)

// GormStore implements Store using GORM + Postgres for deployments that need
// records to survive a restart.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &DoctorModel{}, &AppointmentModel{}, &ChatSessionModel{}, &ChatMessageModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) CreateUser(username, passwordHash string) (domain.User, error) {
	model := UserModel{
		ID:           util.NewID(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := g.db.Create(&model).Error; err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return userToDomain(model), nil
}

func (g *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	err := g.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userToDomain(model), true, nil
}

func (g *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	err := g.db.First(&model, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user by username: %w", err)
	}
	return userToDomain(model), true, nil
}

func (g *GormStore) CreateDoctor(doctor domain.Doctor) (domain.Doctor, error) {
	doctor.ID = util.NewID()
	model := doctorToModel(doctor)
	if err := g.db.Create(&model).Error; err != nil {
		return domain.Doctor{}, fmt.Errorf("create doctor: %w", err)
	}
	return doctor, nil
}

func (g *GormStore) ListDoctors() ([]domain.Doctor, error) {
	var models []DoctorModel
	if err := g.db.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	res := make([]domain.Doctor, 0, len(models))
	for _, m := range models {
		res = append(res, doctorToDomain(m))
	}
	return res, nil
}

func (g *GormStore) ListDoctorsByLocation(location string) ([]domain.Doctor, error) {
	var models []DoctorModel
	err := g.db.Where("location ILIKE ?", "%"+location+"%").Order("created_at asc").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors by location: %w", err)
	}
	res := make([]domain.Doctor, 0, len(models))
	for _, m := range models {
		res = append(res, doctorToDomain(m))
	}
	return res, nil
}

func (g *GormStore) CreateAppointment(appt domain.Appointment) (domain.Appointment, error) {
	appt.ID = util.NewID()
	appt.CreatedAt = time.Now().UTC()
	if appt.Status == "" {
		appt.Status = domain.AppointmentPending
	}
	model := appointmentToModel(appt)
	if err := g.db.Create(&model).Error; err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (g *GormStore) ListAppointments() ([]domain.Appointment, error) {
	var models []AppointmentModel
	if err := g.db.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	res := make([]domain.Appointment, 0, len(models))
	for _, m := range models {
		res = append(res, appointmentToDomain(m))
	}
	return res, nil
}

func (g *GormStore) ListAppointmentsByDate(day time.Time) ([]domain.Appointment, error) {
	start := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	var models []AppointmentModel
	err := g.db.Where("appointment_date >= ? AND appointment_date < ?", start, end).
		Order("appointment_date asc").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	res := make([]domain.Appointment, 0, len(models))
	for _, m := range models {
		res = append(res, appointmentToDomain(m))
	}
	return res, nil
}

func (g *GormStore) UpdateAppointmentStatus(id string, status domain.AppointmentStatus) (domain.Appointment, bool, error) {
	tx := g.db.Model(&AppointmentModel{}).Where("id = ?", id).Update("status", string(status))
	if tx.Error != nil {
		return domain.Appointment{}, false, fmt.Errorf("update appointment status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.Appointment{}, false, nil
	}
	var model AppointmentModel
	if err := g.db.First(&model, "id = ?", id).Error; err != nil {
		return domain.Appointment{}, false, fmt.Errorf("reload appointment: %w", err)
	}
	return appointmentToDomain(model), true, nil
}

func (g *GormStore) CreateChatSession(session domain.ChatSession) (domain.ChatSession, error) {
	session.ID = util.NewID()
	session.CreatedAt = time.Now().UTC()
	if session.Status == "" {
		session.Status = domain.SessionActive
	}
	model := sessionToModel(session)
	if err := g.db.Create(&model).Error; err != nil {
		return domain.ChatSession{}, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

func (g *GormStore) GetChatSession(id string) (domain.ChatSession, bool, error) {
	var model ChatSessionModel
	err := g.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ChatSession{}, false, nil
	}
	if err != nil {
		return domain.ChatSession{}, false, fmt.Errorf("get chat session: %w", err)
	}
	return sessionToDomain(model), true, nil
}

func (g *GormStore) ListChatSessions() ([]domain.ChatSession, error) {
	var models []ChatSessionModel
	if err := g.db.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	res := make([]domain.ChatSession, 0, len(models))
	for _, m := range models {
		res = append(res, sessionToDomain(m))
	}
	return res, nil
}

func (g *GormStore) UpdateChatSession(id string, upd SessionUpdate) (domain.ChatSession, bool, error) {
	updates := map[string]any{}
	if upd.PatientName != nil {
		updates["patient_name"] = *upd.PatientName
	}
	if upd.Location != nil {
		updates["location"] = *upd.Location
	}
	if upd.Urgency != nil {
		updates["urgency"] = string(*upd.Urgency)
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.AppointmentID != nil {
		updates["appointment_id"] = *upd.AppointmentID
	}
	if len(updates) > 0 {
		tx := g.db.Model(&ChatSessionModel{}).Where("id = ?", id).Updates(updates)
		if tx.Error != nil {
			return domain.ChatSession{}, false, fmt.Errorf("update chat session: %w", tx.Error)
		}
		if tx.RowsAffected == 0 {
			return domain.ChatSession{}, false, nil
		}
	}
	return g.GetChatSession(id)
}

func (g *GormStore) CreateChatMessage(msg domain.ChatMessage) (domain.ChatMessage, error) {
	msg.ID = util.NewID()
	msg.Timestamp = time.Now().UTC()
	model := messageToModel(msg)
	if err := g.db.Create(&model).Error; err != nil {
		return domain.ChatMessage{}, fmt.Errorf("create chat message: %w", err)
	}
	return msg, nil
}

func (g *GormStore) ListChatMessages(sessionID string) ([]domain.ChatMessage, error) {
	var models []ChatMessageModel
	err := g.db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	res := make([]domain.ChatMessage, 0, len(models))
	for _, m := range models {
		res = append(res, messageToDomain(m))
	}
	return res, nil
}

// conversions

func userToDomain(m UserModel) domain.User {
	return domain.User{ID: m.ID, Username: m.Username, PasswordHash: m.PasswordHash}
}

func doctorToModel(d domain.Doctor) DoctorModel {
	return DoctorModel{
		ID:          d.ID,
		Name:        d.Name,
		Specialty:   d.Specialty,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		Location:    d.Location,
	}
}

func doctorToDomain(m DoctorModel) domain.Doctor {
	return domain.Doctor{
		ID:          m.ID,
		Name:        m.Name,
		Specialty:   m.Specialty,
		Rating:      m.Rating,
		ReviewCount: m.ReviewCount,
		Location:    m.Location,
	}
}

func appointmentToModel(a domain.Appointment) AppointmentModel {
	return AppointmentModel{
		ID:              a.ID,
		PatientName:     a.PatientName,
		PatientEmail:    a.PatientEmail,
		PatientPhone:    a.PatientPhone,
		Location:        a.Location,
		Urgency:         string(a.Urgency),
		DoctorID:        a.DoctorID,
		AppointmentDate: a.AppointmentDate,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
	}
}

func appointmentToDomain(m AppointmentModel) domain.Appointment {
	return domain.Appointment{
		ID:              m.ID,
		PatientName:     m.PatientName,
		PatientEmail:    m.PatientEmail,
		PatientPhone:    m.PatientPhone,
		Location:        m.Location,
		Urgency:         domain.Urgency(m.Urgency),
		DoctorID:        m.DoctorID,
		AppointmentDate: m.AppointmentDate,
		Status:          domain.AppointmentStatus(m.Status),
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

func sessionToModel(s domain.ChatSession) ChatSessionModel {
	return ChatSessionModel{
		ID:            s.ID,
		PatientName:   s.PatientName,
		Location:      s.Location,
		Urgency:       string(s.Urgency),
		Status:        s.Status,
		AppointmentID: s.AppointmentID,
		CreatedAt:     s.CreatedAt,
	}
}

func sessionToDomain(m ChatSessionModel) domain.ChatSession {
	return domain.ChatSession{
		ID:            m.ID,
		PatientName:   m.PatientName,
		Location:      m.Location,
		Urgency:       domain.Urgency(m.Urgency),
		Status:        m.Status,
		AppointmentID: m.AppointmentID,
		CreatedAt:     m.CreatedAt,
	}
}

func messageToModel(msg domain.ChatMessage) ChatMessageModel {
	return ChatMessageModel{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Content:   msg.Content,
		Sender:    string(msg.Sender),
		Timestamp: msg.Timestamp,
	}
}

func messageToDomain(m ChatMessageModel) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		Content:   m.Content,
		Sender:    domain.Sender(m.Sender),
		Timestamp: m.Timestamp,
	}
}
