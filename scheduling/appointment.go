package scheduling

import "bookingpro-backend/apperror"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Transition checks that an appointment may move from one status to another.
// Only scheduled appointments can be cancelled or completed.
func Transition(from, to AppointmentStatus) error {
	if from != StatusScheduled {
		return apperror.NewValidationError("appointment is already "+string(from), string(from)+" -> "+string(to))
	}
	if to != StatusCancelled && to != StatusCompleted {
		return apperror.NewValidationError("invalid appointment status", string(to))
	}
	return nil
}
