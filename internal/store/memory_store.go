package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"neurointake/internal/util"
	"neurointake/pkg/domain"
)

// MemoryStore keeps all records in-process. Nothing survives a restart;
// callers that need durability select the Postgres store instead.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	usernames    map[string]string // username -> user ID
	doctors      map[string]domain.Doctor
	doctorOrder  []string
	appointments map[string]domain.Appointment
	apptOrder    []string
	sessions     map[string]domain.ChatSession
	messages     map[string][]domain.ChatMessage // keyed by session ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]domain.User),
		usernames:    make(map[string]string),
		doctors:      make(map[string]domain.Doctor),
		appointments: make(map[string]domain.Appointment),
		sessions:     make(map[string]domain.ChatSession),
		messages:     make(map[string][]domain.ChatMessage),
	}
}

func (m *MemoryStore) CreateUser(username, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := domain.User{
		ID:           util.NewID(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	m.users[user.ID] = user
	m.usernames[username] = user.ID
	return user, nil
}

func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[username]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) CreateDoctor(doctor domain.Doctor) (domain.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doctor.ID = util.NewID()
	m.doctors[doctor.ID] = doctor
	m.doctorOrder = append(m.doctorOrder, doctor.ID)
	return doctor, nil
}

func (m *MemoryStore) ListDoctors() ([]domain.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Doctor, 0, len(m.doctorOrder))
	for _, id := range m.doctorOrder {
		if d, ok := m.doctors[id]; ok {
			res = append(res, d)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListDoctorsByLocation(location string) ([]domain.Doctor, error) {
	needle := strings.ToLower(location)
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Doctor, 0)
	for _, id := range m.doctorOrder {
		d, ok := m.doctors[id]
		if ok && strings.Contains(strings.ToLower(d.Location), needle) {
			res = append(res, d)
		}
	}
	return res, nil
}

func (m *MemoryStore) CreateAppointment(appt domain.Appointment) (domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt.ID = util.NewID()
	appt.CreatedAt = time.Now().UTC()
	if appt.Status == "" {
		appt.Status = domain.AppointmentPending
	}
	m.appointments[appt.ID] = appt
	m.apptOrder = append(m.apptOrder, appt.ID)
	return appt, nil
}

func (m *MemoryStore) ListAppointments() ([]domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Appointment, 0, len(m.apptOrder))
	for _, id := range m.apptOrder {
		if a, ok := m.appointments[id]; ok {
			res = append(res, a)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListAppointmentsByDate(day time.Time) ([]domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Appointment, 0)
	for _, id := range m.apptOrder {
		a, ok := m.appointments[id]
		if ok && a.AppointmentDate != nil && sameDay(*a.AppointmentDate, day) {
			res = append(res, a)
		}
	}
	return res, nil
}

// UpdateAppointmentStatus replaces the status in place. The status value is
// stored as given; recognized values are not enforced here.
func (m *MemoryStore) UpdateAppointmentStatus(id string, status domain.AppointmentStatus) (domain.Appointment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return domain.Appointment{}, false, nil
	}
	appt.Status = status
	m.appointments[id] = appt
	return appt, true, nil
}

func (m *MemoryStore) CreateChatSession(session domain.ChatSession) (domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = util.NewID()
	session.CreatedAt = time.Now().UTC()
	if session.Status == "" {
		session.Status = domain.SessionActive
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *MemoryStore) GetChatSession(id string) (domain.ChatSession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *MemoryStore) ListChatSessions() ([]domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ChatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		res = append(res, s)
	}
	return res, nil
}

// UpdateChatSession merges the provided fields into the session record.
func (m *MemoryStore) UpdateChatSession(id string, upd SessionUpdate) (domain.ChatSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ChatSession{}, false, nil
	}
	if upd.PatientName != nil {
		session.PatientName = *upd.PatientName
	}
	if upd.Location != nil {
		session.Location = *upd.Location
	}
	if upd.Urgency != nil {
		session.Urgency = *upd.Urgency
	}
	if upd.Status != nil {
		session.Status = *upd.Status
	}
	if upd.AppointmentID != nil {
		session.AppointmentID = *upd.AppointmentID
	}
	m.sessions[id] = session
	return session, true, nil
}

func (m *MemoryStore) CreateChatMessage(msg domain.ChatMessage) (domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = util.NewID()
	msg.Timestamp = time.Now().UTC()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return msg, nil
}

func (m *MemoryStore) ListChatMessages(sessionID string) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.messages[sessionID]
	res := make([]domain.ChatMessage, len(stored))
	copy(res, stored)
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.Before(res[j].Timestamp)
	})
	return res, nil
}
