package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careq/careq/internal/domain/catalog"
)

type catalogDirectory struct {
	svc *catalog.Service
}

// NewCatalogDirectory adapts the catalog service to the booking engine's
// Catalog interface, folding the catalog's error kinds into ErrDoctorNotFound.
func NewCatalogDirectory(svc *catalog.Service) Catalog {
	return &catalogDirectory{svc: svc}
}

func (c *catalogDirectory) FindDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) (*DoctorInfo, error) {
	d, err := c.svc.FindDoctor(ctx, hospitalID, doctorID, date)
	if err != nil {
		if errors.Is(err, catalog.ErrDoctorNotFound) || errors.Is(err, catalog.ErrHospitalNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrDoctorNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &DoctorInfo{
		ID:            d.ID,
		HospitalID:    d.HospitalID,
		DailyCapacity: d.DailyCapacity,
	}, nil
}
