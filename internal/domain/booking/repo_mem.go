package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore backs the memory store mode and tests. A single RWMutex guards
// the map; status CAS happens under the write lock, which gives the same
// single-winner guarantee the postgres store gets from its conditional UPDATE.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]*Appointment)}
}

func (s *MemoryStore) Create(_ context.Context, a *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for _, other := range s.items {
		if other.DoctorID == a.DoctorID && other.AppointmentDate.Equal(a.AppointmentDate) && other.TokenNumber == a.TokenNumber {
			return fmt.Errorf("%w: duplicate token %d for doctor %s on %s",
				ErrPersistence, a.TokenNumber, a.DoctorID, a.AppointmentDate.Format(DateLayout))
		}
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != from {
		return nil, fmt.Errorf("%w: status is %s, expected %s", ErrInvalidTransition, a.Status, from)
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*Appointment
	for _, a := range s.items {
		if !matches(a, f) {
			continue
		}
		cp := *a
		all = append(all, &cp)
	}

	// Token order within a single doctor/day listing, creation order otherwise.
	if f.DoctorID != nil && f.Date != nil {
		sort.Slice(all, func(i, j int) bool { return all[i].TokenNumber < all[j].TokenNumber })
	} else {
		sort.Slice(all, func(i, j int) bool {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].TokenNumber < all[j].TokenNumber
			}
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		})
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func matches(a *Appointment, f ListFilter) bool {
	if f.HospitalID != nil && a.HospitalID != *f.HospitalID {
		return false
	}
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if f.Date != nil && !a.AppointmentDate.Equal(Day(*f.Date)) {
		return false
	}
	if f.PatientName != "" && !strings.EqualFold(a.PatientName, f.PatientName) {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	return true
}
