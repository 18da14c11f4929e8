package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lifecycle applies the appointment state machine. Every operation is a
// status compare-and-swap on the store, so concurrent conflicting calls on
// the same appointment produce exactly one winner.
type Lifecycle struct {
	store AppointmentStore
	now   func() time.Time
}

func NewLifecycle(store AppointmentStore) *Lifecycle {
	return &Lifecycle{store: store, now: time.Now}
}

func (l *Lifecycle) CheckIn(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return l.transition(ctx, id, StatusBooked, StatusCheckedIn)
}

func (l *Lifecycle) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return l.transition(ctx, id, StatusCheckedIn, StatusCompleted)
}

// Cancel is legal from Booked or CheckedIn. The CAS is keyed on the status
// observed here, so a concurrent transition still leaves one winner.
func (l *Lifecycle) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, a.Status)
	}
	return l.store.UpdateStatus(ctx, id, a.Status, StatusCancelled)
}

// MarkNoShow is legal from Booked, and only once the appointment's calendar
// day has fully elapsed.
func (l *Lifecycle) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dayAfter := Day(a.AppointmentDate).AddDate(0, 0, 1)
	if l.now().UTC().Before(dayAfter) {
		return nil, fmt.Errorf("%w: %s has not ended", ErrTooEarly, a.AppointmentDate.Format(DateLayout))
	}
	return l.transition(ctx, id, StatusBooked, StatusNoShow)
}

func (l *Lifecycle) transition(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return l.store.UpdateStatus(ctx, id, from, to)
}
