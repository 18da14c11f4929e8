package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queries is the read-only facade over the appointment store used by
// dashboards. Listings come back in ascending token order within a single
// doctor/day and in creation order otherwise.
type Queries struct {
	store AppointmentStore
}

func NewQueries(store AppointmentStore) *Queries {
	return &Queries{store: store}
}

func (q *Queries) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return q.store.GetByID(ctx, id)
}

func (q *Queries) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, *f.Status)
	}
	return q.store.List(ctx, f, limit, offset)
}

func (q *Queries) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return q.store.List(ctx, ListFilter{HospitalID: &hospitalID}, limit, offset)
}

func (q *Queries) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	day := Day(date)
	return q.store.List(ctx, ListFilter{DoctorID: &doctorID, Date: &day}, limit, offset)
}

func (q *Queries) ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*Appointment, int, error) {
	return q.store.List(ctx, ListFilter{PatientName: patientName}, limit, offset)
}
