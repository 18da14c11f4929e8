package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedAppointment(t *testing.T, store *MemoryStore, doctorID, hospitalID uuid.UUID, date time.Time, token int, name string, status Status) *Appointment {
	t.Helper()
	a := &Appointment{
		ID:              uuid.New(),
		HospitalID:      hospitalID,
		DoctorID:        doctorID,
		PatientName:     name,
		PatientAge:      40,
		PatientGender:   "male",
		AppointmentDate: Day(date),
		TokenNumber:     token,
		Status:          status,
	}
	if err := store.Create(context.Background(), a); err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
	return a
}

func TestQueries_TokenOrderWithinDoctorDay(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	doctorID, hospitalID := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	// Seed out of token order.
	for _, token := range []int{3, 1, 4, 2} {
		seedAppointment(t, store, doctorID, hospitalID, date, token, "Patient", StatusBooked)
	}

	items, total, err := q.ListByDoctorDate(context.Background(), doctorID, date, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	for i, a := range items {
		if a.TokenNumber != i+1 {
			t.Errorf("position %d: expected token %d, got %d", i, i+1, a.TokenNumber)
		}
	}
}

func TestQueries_ListByHospital(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	h1, h2 := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	seedAppointment(t, store, uuid.New(), h1, date, 1, "Asha", StatusBooked)
	seedAppointment(t, store, uuid.New(), h1, date, 1, "Ravi", StatusBooked)
	seedAppointment(t, store, uuid.New(), h2, date, 1, "Meera", StatusBooked)

	_, total, err := q.ListByHospital(context.Background(), h1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 appointments for hospital, got %d", total)
	}
}

func TestQueries_ListByPatient(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	doctorID, hospitalID := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	seedAppointment(t, store, doctorID, hospitalID, date, 1, "Asha Verma", StatusBooked)
	seedAppointment(t, store, doctorID, hospitalID, date, 2, "Ravi Nair", StatusBooked)

	// Name matching is case-insensitive.
	items, total, err := q.ListByPatient(context.Background(), "asha verma", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].PatientName != "Asha Verma" {
		t.Errorf("expected the single appointment for Asha Verma, got total=%d", total)
	}
}

func TestQueries_StatusFilter(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	doctorID, hospitalID := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	seedAppointment(t, store, doctorID, hospitalID, date, 1, "Asha", StatusBooked)
	seedAppointment(t, store, doctorID, hospitalID, date, 2, "Ravi", StatusCancelled)
	seedAppointment(t, store, doctorID, hospitalID, date, 3, "Meera", StatusBooked)

	status := StatusBooked
	_, total, err := q.List(context.Background(), ListFilter{Status: &status}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 booked appointments, got %d", total)
	}
}

func TestQueries_UnknownStatusRejected(t *testing.T) {
	q := NewQueries(NewMemoryStore())
	status := Status("arrived")
	_, _, err := q.List(context.Background(), ListFilter{Status: &status}, 0, 0)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown status, got %v", err)
	}
}

func TestQueries_Pagination(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	doctorID, hospitalID := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	for token := 1; token <= 5; token++ {
		seedAppointment(t, store, doctorID, hospitalID, date, token, "Patient", StatusBooked)
	}

	items, total, err := q.ListByDoctorDate(context.Background(), doctorID, date, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5 regardless of page, got %d", total)
	}
	if len(items) != 2 || items[0].TokenNumber != 3 || items[1].TokenNumber != 4 {
		t.Errorf("expected tokens 3 and 4 on the second page, got %v", items)
	}

	// Offset past the end yields an empty page, not an error.
	items, total, err = q.ListByDoctorDate(context.Background(), doctorID, date, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 || total != 5 {
		t.Errorf("expected empty page with total 5, got len=%d total=%d", len(items), total)
	}
}

func TestQueries_GetUnknown(t *testing.T) {
	q := NewQueries(NewMemoryStore())
	if _, err := q.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueries_DateFilterNormalizesToDay(t *testing.T) {
	store := NewMemoryStore()
	q := NewQueries(store)
	doctorID, hospitalID := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	seedAppointment(t, store, doctorID, hospitalID, date, 1, "Asha", StatusBooked)

	// A timestamp in the middle of the day still finds the appointment.
	midday := time.Date(2026, 9, 14, 13, 30, 0, 0, time.UTC)
	_, total, err := q.ListByDoctorDate(context.Background(), doctorID, midday, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected the appointment to match a midday timestamp, got total %d", total)
	}
}
