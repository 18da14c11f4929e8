package booking

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for appointment dates.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// transitions is the single source of truth for legal status changes.
// Completed, Cancelled and NoShow are terminal.
var transitions = map[Status][]Status{
	StatusBooked:    {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> to is a legal lifecycle edge.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment maps to the appointment table. AppointmentDate is a calendar
// day (midnight UTC); TokenNumber is the patient's queue position for the
// doctor on that day and is never changed after creation.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	HospitalID      uuid.UUID `db:"hospital_id" json:"hospital_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	PatientAge      int       `db:"patient_age" json:"patient_age"`
	PatientGender   string    `db:"patient_gender" json:"patient_gender"`
	PatientAddress  string    `db:"patient_address" json:"patient_address"`
	Problem         string    `db:"problem" json:"problem"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	TokenNumber     int       `db:"token_number" json:"token_number"`
	Status          Status    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
