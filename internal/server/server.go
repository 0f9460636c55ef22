// Package server exposes the intake REST API.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"neurointake/internal/app"
	"neurointake/internal/ratelimit"
	"neurointake/internal/util"
	"neurointake/pkg/domain"
)

var validate = validator.New()

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// MessageLimiter may be nil, which disables rate limiting.
	MessageLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes HTTP endpoints for the intake service.
type Server struct {
	app     *app.App
	limiter *ratelimit.FixedWindowLimiter
	proxies *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:     cfg.App,
		limiter: cfg.MessageLimiter,
		proxies: cfg.TrustedProxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in the shared middleware.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/doctors", s.handleDoctors)
	s.mux.HandleFunc("/api/doctors/location/", s.handleDoctorsByLocation)
	s.mux.HandleFunc("/api/chat/session", s.handleCreateSession)
	s.mux.HandleFunc("/api/chat/session/", s.handleSession)
	s.mux.HandleFunc("/api/appointments", s.handleAppointments)
	s.mux.HandleFunc("/api/appointments/date/", s.handleAppointmentsByDate)
	s.mux.HandleFunc("/api/appointments/", s.handleAppointmentStatus)
	s.mux.HandleFunc("/api/triage", s.handleTriage)
	s.mux.HandleFunc("/api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDoctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	doctors, err := s.app.Doctors("")
	if err != nil {
		writeInternalError(w, r, "list doctors", err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (s *Server) handleDoctorsByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	location := strings.TrimPrefix(r.URL.Path, "/api/doctors/location/")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	doctors, err := s.app.Doctors(location)
	if err != nil {
		writeInternalError(w, r, "list doctors by location", err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

type createSessionRequest struct {
	PatientName string `json:"patientName"`
	Location    string `json:"location"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	// All fields optional; an empty body starts a blank session.
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := s.app.CreateSession(domain.ChatSession{
		PatientName: req.PatientName,
		Location:    req.Location,
	})
	if err != nil {
		writeInternalError(w, r, "create session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type postMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// handleSession routes /api/chat/session/{id}/messages (GET) and
// /api/chat/session/{id}/message (POST).
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/chat/session/")
	sessionID, action, ok := strings.Cut(rest, "/")
	if !ok || sessionID == "" {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "messages":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.listSessionMessages(w, r, sessionID)
	case "message":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.postSessionMessage(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) listSessionMessages(w http.ResponseWriter, r *http.Request, sessionID string) {
	messages, err := s.app.SessionMessages(sessionID)
	if err != nil {
		writeInternalError(w, r, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) postSessionMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	if s.limiter != nil && !s.limiter.Allow(util.ClientIP(r, s.proxies)) {
		writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	res, err := s.app.PostMessage(r.Context(), sessionID, req.Content)
	if err != nil {
		writeInternalError(w, r, "post message", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createAppointmentRequest struct {
	PatientName     string `json:"patientName" validate:"required"`
	PatientEmail    string `json:"patientEmail" validate:"omitempty,email"`
	PatientPhone    string `json:"patientPhone"`
	Location        string `json:"location" validate:"required"`
	Urgency         string `json:"urgency" validate:"required,oneof=emergency urgent routine"`
	DoctorID        string `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate" validate:"omitempty"`
	Notes           string `json:"notes"`
	SessionID       string `json:"sessionId"`
}

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		appts, err := s.app.Appointments()
		if err != nil {
			writeInternalError(w, r, "list appointments", err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	case http.MethodPost:
		s.createAppointment(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	appt := domain.Appointment{
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		Location:     req.Location,
		Urgency:      domain.Urgency(req.Urgency),
		DoctorID:     req.DoctorID,
		Notes:        req.Notes,
	}
	if req.AppointmentDate != "" {
		when, err := parseDate(req.AppointmentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid appointmentDate")
			return
		}
		appt.AppointmentDate = &when
	}
	created, err := s.app.CreateAppointment(r.Context(), appt, req.SessionID)
	if err != nil {
		writeInternalError(w, r, "create appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleAppointmentsByDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/appointments/date/")
	day, err := parseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD or RFC 3339")
		return
	}
	appts, err := s.app.AppointmentsByDate(day)
	if err != nil {
		writeInternalError(w, r, "list appointments by date", err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// handleAppointmentStatus routes PATCH /api/appointments/{id}/status.
func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/appointments/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" || action != "status" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	appt, err := s.app.UpdateAppointmentStatus(id, domain.AppointmentStatus(req.Status))
	if err != nil {
		if errors.Is(err, app.ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		writeInternalError(w, r, "update appointment status", err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type triageRequest struct {
	Symptoms string `json:"symptoms" validate:"required"`
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req triageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	urgency := s.app.Triage(r.Context(), req.Symptoms)
	writeJSON(w, http.StatusOK, map[string]string{"urgency": string(urgency)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.app.DashboardStats()
	if err != nil {
		writeInternalError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseDate accepts a calendar day or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if when, err := time.Parse("2006-01-02", raw); err == nil {
		return when, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeValidationError reports which fields failed, one entry per field.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"message": "validation failed",
		"errors":  fields,
	})
}

// writeInternalError logs the detail and returns a generic message.
func writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	util.LoggerFromContext(r.Context()).Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
