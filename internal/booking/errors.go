package booking

import "errors"

var (
	// ErrAppointmentNotFound is returned when an appointment id is unknown.
	ErrAppointmentNotFound = errors.New("booking: appointment not found")

	// ErrSlotTaken is returned when another booking won the same slot.
	ErrSlotTaken = errors.New("booking: slot already taken")

	// ErrInvalidTransition is returned for status changes that are not allowed.
	ErrInvalidTransition = errors.New("booking: invalid status transition")
)
