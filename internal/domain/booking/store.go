package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows appointment listings. Nil/zero fields are ignored.
type ListFilter struct {
	HospitalID  *uuid.UUID
	DoctorID    *uuid.UUID
	Date        *time.Time
	PatientName string
	Status      *Status
}

// AppointmentStore is the durable appointment record. Records are never
// physically deleted; terminal states are reached only through UpdateStatus.
//
// UpdateStatus is a compare-and-swap keyed on the current status: it succeeds
// only if the record still has status from, so exactly one of several
// concurrent conflicting transitions wins. Losers get ErrInvalidTransition,
// unknown ids get ErrNotFound.
type AppointmentStore interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error)
}
