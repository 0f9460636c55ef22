package store

import (
	"testing"
	"time"

	"neurointake/pkg/domain"
)

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := NewMemoryStore()
	seen := make(map[string]struct{})
	for i := 0; i < 25; i++ {
		appt, err := s.CreateAppointment(domain.Appointment{
			PatientName: "Pat",
			Location:    "San Francisco, CA",
			Urgency:     domain.UrgencyRoutine,
		})
		if err != nil {
			t.Fatalf("create appointment: %v", err)
		}
		if appt.ID == "" {
			t.Fatal("empty appointment id")
		}
		if _, dup := seen[appt.ID]; dup {
			t.Fatalf("duplicate id %q", appt.ID)
		}
		seen[appt.ID] = struct{}{}
		if appt.CreatedAt.IsZero() {
			t.Fatal("createdAt not assigned")
		}
		if appt.Status != domain.AppointmentPending {
			t.Fatalf("default status = %q, want pending", appt.Status)
		}
	}
}

func TestListChatMessagesOrderedByTimestamp(t *testing.T) {
	s := NewMemoryStore()
	sess, err := s.CreateChatSession(domain.ChatSession{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	for i := 0; i < 10; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAssistant
		}
		if _, err := s.CreateChatMessage(domain.ChatMessage{
			SessionID: sess.ID,
			Content:   "turn",
			Sender:    sender,
		}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	msgs, err := s.ListChatMessages(sess.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 10 {
		t.Fatalf("got %d messages, want 10", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("messages out of order at %d", i)
		}
	}
}

func TestListAppointmentsByDateIgnoresTimeOfDay(t *testing.T) {
	s := NewMemoryStore()
	at := func(value string) *time.Time {
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		return &ts
	}

	newYearsEve, err := s.CreateAppointment(domain.Appointment{
		PatientName:     "Eve",
		Location:        "San Francisco, CA",
		Urgency:         domain.UrgencyRoutine,
		AppointmentDate: at("2025-12-31T23:30:00Z"),
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if _, err := s.CreateAppointment(domain.Appointment{
		PatientName:     "Janus",
		Location:        "San Francisco, CA",
		Urgency:         domain.UrgencyUrgent,
		AppointmentDate: at("2026-01-01T00:15:00Z"),
	}); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if _, err := s.CreateAppointment(domain.Appointment{
		PatientName: "Undated",
		Location:    "San Francisco, CA",
		Urgency:     domain.UrgencyRoutine,
	}); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	day, _ := time.Parse("2006-01-02", "2025-12-31")
	matches, err := s.ListAppointmentsByDate(day)
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches for 2025-12-31, want 1", len(matches))
	}
	if matches[0].ID != newYearsEve.ID {
		t.Fatalf("matched %q, want %q", matches[0].ID, newYearsEve.ID)
	}
}

func TestListDoctorsByLocationSubstring(t *testing.T) {
	s := NewMemoryStore()
	if err := SeedDoctors(s); err != nil {
		t.Fatalf("seed doctors: %v", err)
	}
	for _, needle := range []string{"francisco", "SAN", "San Francisco, CA"} {
		docs, err := s.ListDoctorsByLocation(needle)
		if err != nil {
			t.Fatalf("list by location %q: %v", needle, err)
		}
		if len(docs) != 3 {
			t.Fatalf("filter %q matched %d doctors, want 3", needle, len(docs))
		}
	}
	docs, err := s.ListDoctorsByLocation("boston")
	if err != nil {
		t.Fatalf("list by location: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("filter boston matched %d doctors, want 0", len(docs))
	}
}

func TestSeedDoctorsIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := SeedDoctors(s); err != nil {
		t.Fatalf("seed doctors: %v", err)
	}
	if err := SeedDoctors(s); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	docs, err := s.ListDoctors()
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d doctors after double seed, want 3", len(docs))
	}
}

func TestUpdateAppointmentStatusMissingID(t *testing.T) {
	s := NewMemoryStore()
	if _, ok, err := s.UpdateAppointmentStatus("no-such-id", domain.AppointmentConfirmed); err != nil || ok {
		t.Fatalf("update missing id: ok=%v err=%v, want absent result", ok, err)
	}
	all, err := s.ListAppointments()
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("store mutated by failed update: %d records", len(all))
	}
}

func TestUpdateChatSessionMergesPartialFields(t *testing.T) {
	s := NewMemoryStore()
	sess, err := s.CreateChatSession(domain.ChatSession{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Status != domain.SessionActive {
		t.Fatalf("new session status = %q, want active", sess.Status)
	}

	loc := "Oakland, CA"
	urgency := domain.UrgencyUrgent
	updated, ok, err := s.UpdateChatSession(sess.ID, SessionUpdate{Location: &loc, Urgency: &urgency})
	if err != nil || !ok {
		t.Fatalf("update session: ok=%v err=%v", ok, err)
	}
	if updated.Location != loc || updated.Urgency != urgency {
		t.Fatalf("merge lost fields: %+v", updated)
	}
	if updated.Status != domain.SessionActive {
		t.Fatalf("status overwritten by partial update: %q", updated.Status)
	}

	name := "Ada"
	updated, ok, err = s.UpdateChatSession(sess.ID, SessionUpdate{PatientName: &name})
	if err != nil || !ok {
		t.Fatalf("second update: ok=%v err=%v", ok, err)
	}
	if updated.Location != loc {
		t.Fatal("earlier merged field lost")
	}
	if updated.PatientName != name {
		t.Fatalf("patientName = %q, want %q", updated.PatientName, name)
	}

	if _, ok, _ := s.UpdateChatSession("missing", SessionUpdate{PatientName: &name}); ok {
		t.Fatal("update of missing session reported found")
	}
}

func TestUsersByUsername(t *testing.T) {
	s := NewMemoryStore()
	created, err := s.CreateUser("frontdesk", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	byName, ok, err := s.GetUserByUsername("frontdesk")
	if err != nil || !ok {
		t.Fatalf("get by username: ok=%v err=%v", ok, err)
	}
	if byName.ID != created.ID {
		t.Fatalf("lookup mismatch: %q vs %q", byName.ID, created.ID)
	}
	if _, ok, _ := s.GetUserByUsername("nobody"); ok {
		t.Fatal("missing username reported found")
	}
}

func TestSeedAdminUserIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := SeedAdminUser(s, "admin", "s3cret"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	user, ok, err := s.GetUserByUsername("admin")
	if err != nil || !ok {
		t.Fatalf("get admin: ok=%v err=%v", ok, err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := SeedAdminUser(s, "admin", "other"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	again, _, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if again.PasswordHash != user.PasswordHash {
		t.Fatal("second seed must not overwrite the account")
	}
}
