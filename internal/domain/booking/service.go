package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DoctorInfo is the slice of the catalog the booking engine needs.
type DoctorInfo struct {
	ID            uuid.UUID
	HospitalID    uuid.UUID
	DailyCapacity int
}

// Catalog is the read-only doctor directory the booking path consults.
// FindDoctor fails with ErrDoctorNotFound when the doctor does not exist,
// does not belong to the hospital, or is not bookable on the date.
type Catalog interface {
	FindDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) (*DoctorInfo, error)
}

// BookRequest is the booking input. AppointmentDate uses DateLayout.
type BookRequest struct {
	PatientName     string `json:"patient_name"`
	PatientAge      int    `json:"patient_age"`
	PatientGender   string `json:"patient_gender"`
	PatientAddress  string `json:"patient_address"`
	Problem         string `json:"problem"`
	HospitalID      string `json:"hospital_id"`
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
}

var recognizedGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

const maxPatientAge = 130

// Service issues tokens: it validates the request, confirms the doctor with
// the catalog, reserves the next token and persists the appointment.
type Service struct {
	registry ScheduleRegistry
	store    AppointmentStore
	catalog  Catalog
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(registry ScheduleRegistry, store AppointmentStore, catalog Catalog, log zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		store:    store,
		catalog:  catalog,
		log:      log,
		now:      time.Now,
	}
}

type parsedRequest struct {
	hospitalID uuid.UUID
	doctorID   uuid.UUID
	date       time.Time
}

// validate collects every violation rather than stopping at the first, so
// the client can fix the whole request in one go.
func (s *Service) validate(req BookRequest) (parsedRequest, []string) {
	var p parsedRequest
	var violations []string

	if req.PatientName == "" {
		violations = append(violations, "patient_name is required")
	}
	if req.PatientAge <= 0 || req.PatientAge > maxPatientAge {
		violations = append(violations, fmt.Sprintf("patient_age must be between 1 and %d", maxPatientAge))
	}
	if !recognizedGenders[req.PatientGender] {
		violations = append(violations, "patient_gender must be one of male, female, other")
	}

	var err error
	if p.hospitalID, err = uuid.Parse(req.HospitalID); err != nil {
		violations = append(violations, "hospital_id is not a valid identifier")
	}
	if p.doctorID, err = uuid.Parse(req.DoctorID); err != nil {
		violations = append(violations, "doctor_id is not a valid identifier")
	}

	if p.date, err = time.Parse(DateLayout, req.AppointmentDate); err != nil {
		violations = append(violations, "appointment_date must be formatted as "+DateLayout)
	} else if p.date.Before(Day(s.now())) {
		violations = append(violations, "appointment_date must not be in the past")
	}

	return p, violations
}

// Book turns a booking request into a persisted appointment with the next
// token for the doctor and day. If persistence fails after the token was
// reserved, the token stays consumed and the caller sees ErrPersistence;
// tokens are an ordering device, not a resource worth reclaiming.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	p, violations := s.validate(req)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	doc, err := s.catalog.FindDoctor(ctx, p.hospitalID, p.doctorID, p.date)
	if err != nil {
		return nil, err
	}

	token, ok, err := s.registry.ReserveNextToken(ctx, doc.ID, p.date, doc.DailyCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: doctor %s is fully booked on %s", ErrCapacityExceeded, doc.ID, req.AppointmentDate)
	}

	a := &Appointment{
		ID:              uuid.New(),
		HospitalID:      p.hospitalID,
		DoctorID:        doc.ID,
		PatientName:     req.PatientName,
		PatientAge:      req.PatientAge,
		PatientGender:   req.PatientGender,
		PatientAddress:  req.PatientAddress,
		Problem:         req.Problem,
		AppointmentDate: p.date,
		TokenNumber:     token,
		Status:          StatusBooked,
	}
	if err := s.store.Create(ctx, a); err != nil {
		s.log.Warn().
			Str("doctor_id", doc.ID.String()).
			Str("date", req.AppointmentDate).
			Int("token", token).
			Err(err).
			Msg("appointment persist failed after token reservation, token stays consumed")
		if errors.Is(err, ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return a, nil
}

// Availability reports the booking headroom for a doctor on a day.
type Availability struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	Capacity  int       `json:"capacity"`
	Issued    int       `json:"issued"`
	Available int       `json:"available"`
	IsFull    bool      `json:"is_full"`
}

// CheckAvailability answers "can this doctor still be booked on this date"
// without consuming a token.
func (s *Service) CheckAvailability(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) (*Availability, error) {
	doc, err := s.catalog.FindDoctor(ctx, hospitalID, doctorID, date)
	if err != nil {
		return nil, err
	}
	issued, err := s.registry.IssuedCount(ctx, doc.ID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	av := &Availability{
		DoctorID: doc.ID,
		Date:     Day(date).Format(DateLayout),
		Capacity: doc.DailyCapacity,
		Issued:   issued,
	}
	if doc.DailyCapacity > 0 {
		av.Available = doc.DailyCapacity - issued
		if av.Available < 0 {
			av.Available = 0
		}
		av.IsFull = issued >= doc.DailyCapacity
	} else {
		av.Available = -1 // unlimited
	}
	return av, nil
}
