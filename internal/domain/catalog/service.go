package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	hospitals HospitalRepository
	doctors   DoctorRepository
}

func NewService(hospitals HospitalRepository, doctors DoctorRepository) *Service {
	return &Service{hospitals: hospitals, doctors: doctors}
}

func (s *Service) CreateHospital(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.hospitals.Create(ctx, h)
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

func (s *Service) ListHospitals(ctx context.Context, district string, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, district, limit, offset)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if _, err := s.hospitals.GetByID(ctx, d.HospitalID); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		return nil, 0, err
	}
	return s.doctors.ListByHospital(ctx, hospitalID, limit, offset)
}

// FindDoctor resolves a doctor for booking: the doctor must exist, belong to
// the given hospital, and take appointments on the weekday of date. Any
// failure reports ErrDoctorNotFound so callers cannot distinguish an unknown
// doctor from one that is not bookable at that hospital on that day.
func (s *Service) FindDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if d.HospitalID != hospitalID {
		return nil, ErrDoctorNotFound
	}
	if !d.AvailableOn(date) {
		return nil, fmt.Errorf("%w: not available on %s", ErrDoctorNotFound, date.Weekday())
	}
	return d, nil
}
