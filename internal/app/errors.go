package app

import "errors"

var (
	// ErrAppointmentNotFound indicates a status update referenced an
	// unknown appointment.
	ErrAppointmentNotFound = errors.New("appointment not found")
)
